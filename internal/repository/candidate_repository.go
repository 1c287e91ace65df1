package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/spec-kit/recruitment-crm/internal/domain"
)

// CandidateFilter captures candidate search parameters. Nil fields are ignored;
// set fields are combined with AND.
type CandidateFilter struct {
	Statuses      []domain.CandidateStatus
	Skill         *string
	MinExperience *int
	MaxExperience *int
	Location      *string
	Text          *string
	Source        *string
	RecruiterID   *int64
	Position      *string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	// Limit <= 0 returns every match.
	Limit  int
	Offset int
}

// CandidateRepository encapsulates candidate persistence.
type CandidateRepository interface {
	Create(ctx context.Context, candidate *domain.Candidate) error
	Update(ctx context.Context, candidate *domain.Candidate) error
	UpdateStatus(ctx context.Context, id int64, status domain.CandidateStatus) error
	AssignRecruiter(ctx context.Context, id int64, recruiterID *int64) error
	OpenCountsByRecruiter(ctx context.Context) (map[int64]int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Candidate, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	Search(ctx context.Context, filter CandidateFilter) ([]domain.Candidate, int64, error)
	Delete(ctx context.Context, id int64) error
}

type candidateRepository struct {
	db *gorm.DB
}

// NewCandidateRepository instantiates repository.
func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

var candidateColumns = []string{
	"first_name", "last_name", "email", "phone", "location", "linkedin_url",
	"current_role", "current_company", "years_of_experience", "skills", "education",
	"status", "position_applied", "recruiter_id", "source", "salary_expectation",
	"notice_period", "resume_url", "notes",
}

func (r *candidateRepository) Create(ctx context.Context, candidate *domain.Candidate) error {
	return r.db.WithContext(ctx).Create(candidate).Error
}

func (r *candidateRepository) Update(ctx context.Context, candidate *domain.Candidate) error {
	res := r.db.WithContext(ctx).Model(candidate).
		Select(candidateColumns).
		Updates(candidate)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *candidateRepository) UpdateStatus(ctx context.Context, id int64, status domain.CandidateStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Candidate{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignRecruiter sets or clears (nil) the owning recruiter.
func (r *candidateRepository) AssignRecruiter(ctx context.Context, id int64, recruiterID *int64) error {
	res := r.db.WithContext(ctx).Model(&domain.Candidate{}).
		Where("id = ?", id).
		Update("recruiter_id", recruiterID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// OpenCountsByRecruiter counts candidates still in the pipeline (not Hired or Rejected) per recruiter.
func (r *candidateRepository) OpenCountsByRecruiter(ctx context.Context) (map[int64]int64, error) {
	var rows []struct {
		RecruiterID int64
		Count       int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Candidate{}).
		Select("recruiter_id, COUNT(*) AS count").
		Where("recruiter_id IS NOT NULL AND status NOT IN ?", []domain.CandidateStatus{domain.StatusHired, domain.StatusRejected}).
		Group("recruiter_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[int64]int64, len(rows))
	for _, row := range rows {
		counts[row.RecruiterID] = row.Count
	}
	return counts, nil
}

func (r *candidateRepository) GetByID(ctx context.Context, id int64) (*domain.Candidate, error) {
	var candidate domain.Candidate
	err := r.withRecruiter(r.db.WithContext(ctx)).
		Where("candidates.id = ?", id).
		First(&candidate).Error
	if err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *candidateRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&domain.Candidate{}).
		Where("LOWER(email) = LOWER(?) AND id <> ?", email, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *candidateRepository) Search(ctx context.Context, filter CandidateFilter) ([]domain.Candidate, int64, error) {
	var total int64
	if err := applyCandidateFilter(r.db.WithContext(ctx).Model(&domain.Candidate{}), filter).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	candidates := []domain.Candidate{}
	if total == 0 {
		return candidates, 0, nil
	}

	query := applyCandidateFilter(r.withRecruiter(r.db.WithContext(ctx)), filter).
		Order("candidates.created_at DESC, candidates.id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if err := query.Find(&candidates).Error; err != nil {
		return nil, 0, err
	}
	return candidates, total, nil
}

func (r *candidateRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Candidate{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *candidateRepository) withRecruiter(db *gorm.DB) *gorm.DB {
	return db.Model(&domain.Candidate{}).
		Select("candidates.*, recruiters.full_name AS recruiter_name").
		Joins("LEFT JOIN users recruiters ON recruiters.id = candidates.recruiter_id")
}

// applyCandidateFilter adds one bound predicate per set field.
func applyCandidateFilter(query *gorm.DB, filter CandidateFilter) *gorm.DB {
	if len(filter.Statuses) > 0 {
		query = query.Where("candidates.status IN ?", filter.Statuses)
	}
	if filter.Skill != nil && *filter.Skill != "" {
		query = query.Where("LOWER(candidates.skills) LIKE ?"+likeEscape, likePattern(*filter.Skill))
	}
	if filter.MinExperience != nil {
		query = query.Where("candidates.years_of_experience >= ?", *filter.MinExperience)
	}
	if filter.MaxExperience != nil {
		query = query.Where("candidates.years_of_experience <= ?", *filter.MaxExperience)
	}
	if filter.Location != nil && *filter.Location != "" {
		query = query.Where("LOWER(candidates.location) LIKE ?"+likeEscape, likePattern(*filter.Location))
	}
	if filter.Text != nil && *filter.Text != "" {
		pattern := likePattern(*filter.Text)
		query = query.Where(
			"(LOWER(candidates.first_name || ' ' || candidates.last_name) LIKE ?"+likeEscape+
				" OR LOWER(candidates.email) LIKE ?"+likeEscape+
				" OR LOWER(candidates.skills) LIKE ?"+likeEscape+")",
			pattern, pattern, pattern,
		)
	}
	if filter.Source != nil && *filter.Source != "" {
		query = query.Where("LOWER(candidates.source) = LOWER(?)", *filter.Source)
	}
	if filter.RecruiterID != nil {
		query = query.Where("candidates.recruiter_id = ?", *filter.RecruiterID)
	}
	if filter.Position != nil && *filter.Position != "" {
		query = query.Where("LOWER(candidates.position_applied) LIKE ?"+likeEscape, likePattern(*filter.Position))
	}
	if filter.CreatedFrom != nil {
		query = query.Where("candidates.created_at >= ?", filter.CreatedFrom.UTC())
	}
	if filter.CreatedTo != nil {
		query = query.Where("candidates.created_at <= ?", filter.CreatedTo.UTC())
	}
	return query
}
