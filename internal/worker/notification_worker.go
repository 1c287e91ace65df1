package worker

import (
	"github.com/spec-kit/recruitment-crm/internal/service"
)

// StartPipelineWorker registers the pipeline event listeners.
func StartPipelineWorker(notifier *service.PipelineNotifier) {
	if notifier == nil {
		return
	}
	notifier.RegisterHandlers()
}
