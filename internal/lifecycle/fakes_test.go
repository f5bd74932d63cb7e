package lifecycle

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/formflow/formflow-api/internal/apperr"
	"github.com/formflow/formflow-api/internal/models"
	"github.com/formflow/formflow-api/internal/notification"
)

// In-memory fakes standing in for the Postgres repositories. All of them
// guard their maps with a mutex so the concurrent-decide tests exercise the
// same serialization the conditional update provides in SQL.

type fakeFormatRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*models.Format
}

func (f *fakeFormatRepo) Create(_ context.Context, format models.Format) (models.Format, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	format.ID = f.nextID
	format.CreatedAt = time.Now()
	format.UpdatedAt = format.CreatedAt
	f.items[format.ID] = &format
	return format, nil
}

func (f *fakeFormatRepo) GetByID(_ context.Context, id int64) (models.Format, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	format, ok := f.items[id]
	if !ok {
		return models.Format{}, apperr.NotFoundf("format %d", id)
	}
	return *format, nil
}

func (f *fakeFormatRepo) List(_ context.Context, activeOnly bool) ([]models.Format, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Format
	for _, format := range f.items {
		if activeOnly && !format.IsActive() {
			continue
		}
		out = append(out, *format)
	}
	return out, nil
}

func (f *fakeFormatRepo) Update(_ context.Context, format models.Format) (models.Format, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.items[format.ID]
	if !ok {
		return models.Format{}, apperr.NotFoundf("format %d", format.ID)
	}
	existing.Title = format.Title
	existing.BodyTemplate = format.BodyTemplate
	existing.Variables = format.Variables
	existing.UpdatedAt = time.Now()
	return *existing, nil
}

func (f *fakeFormatRepo) SetStatus(_ context.Context, id int64, status models.FormatStatus) (models.Format, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	format, ok := f.items[id]
	if !ok {
		return models.Format{}, apperr.NotFoundf("format %d", id)
	}
	format.Status = status
	format.UpdatedAt = time.Now()
	return *format, nil
}

func (f *fakeFormatRepo) CountSubmissions(_ context.Context, formatID int64) (int64, error) {
	return 0, nil
}

type fakeSubmissionRepo struct {
	mu      sync.Mutex
	nextID  int64
	items   map[int64]*models.Submission
	formats *fakeFormatRepo
	users   *fakeUserRepo

	// gate, when set, runs at the end of GetWithRelations. The concurrent
	// decide test uses it as a barrier so both deciders observe pending
	// before either attempts the status flip.
	gate func()
}

func (f *fakeSubmissionRepo) Create(_ context.Context, submission models.Submission) (models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	submission.ID = f.nextID
	submission.Status = models.SubmissionStatusPending
	submission.CreatedAt = time.Now().Add(time.Duration(f.nextID) * time.Millisecond)
	submission.UpdatedAt = submission.CreatedAt
	stored := submission
	f.items[stored.ID] = &stored
	return submission, nil
}

func (f *fakeSubmissionRepo) GetByID(_ context.Context, id int64) (models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	submission, ok := f.items[id]
	if !ok {
		return models.Submission{}, apperr.NotFoundf("submission %d", id)
	}
	return *submission, nil
}

func (f *fakeSubmissionRepo) GetWithRelations(ctx context.Context, id int64) (models.Submission, error) {
	submission, err := f.GetByID(ctx, id)
	if err != nil {
		return models.Submission{}, err
	}
	format, err := f.formats.GetByID(ctx, submission.FormatID)
	if err != nil {
		return models.Submission{}, err
	}
	submitter, err := f.users.GetByID(ctx, submission.SubmitterID)
	if err != nil {
		return models.Submission{}, err
	}
	submission.Format = &format
	submission.Submitter = &submitter
	if f.gate != nil {
		f.gate()
	}
	return submission, nil
}

func (f *fakeSubmissionRepo) ListBySubmitter(_ context.Context, submitterID int64) ([]models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Submission
	for _, s := range f.items {
		if s.SubmitterID == submitterID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeSubmissionRepo) ListAll(_ context.Context) ([]models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Submission
	for _, s := range f.items {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeSubmissionRepo) UpdateData(_ context.Context, id int64, data map[string]any) (models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	submission, ok := f.items[id]
	if !ok {
		return models.Submission{}, apperr.NotFoundf("submission %d", id)
	}
	submission.Data = data
	submission.UpdatedAt = time.Now()
	return *submission, nil
}

func (f *fakeSubmissionRepo) UpdateStatusIf(_ context.Context, id int64, from, to models.SubmissionStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	submission, ok := f.items[id]
	if !ok || submission.Status != from {
		return 0, nil
	}
	submission.Status = to
	submission.UpdatedAt = time.Now()
	return 1, nil
}

type fakeValidationRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*models.Validation
	subs   *fakeSubmissionRepo
}

func (f *fakeValidationRepo) CreateShell(_ context.Context, submissionID int64) (models.Validation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.items {
		if v.SubmissionID == submissionID && v.Status == models.SubmissionStatusPending {
			return models.Validation{}, errors.New("open validation already exists")
		}
	}
	f.nextID++
	validation := models.Validation{
		ID:           f.nextID,
		SubmissionID: submissionID,
		Status:       models.SubmissionStatusPending,
		CreatedAt:    time.Now().Add(time.Duration(f.nextID) * time.Millisecond),
	}
	validation.UpdatedAt = validation.CreatedAt
	f.items[validation.ID] = &validation
	return validation, nil
}

func (f *fakeValidationRepo) Decide(_ context.Context, submissionID, validatorID int64, status models.SubmissionStatus, observations string) (models.Validation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.items {
		if v.SubmissionID == submissionID && v.Status == models.SubmissionStatusPending {
			id := validatorID
			v.ValidatorID = &id
			v.Status = status
			v.Observations = observations
			v.UpdatedAt = time.Now()
			return *v, nil
		}
	}
	return models.Validation{}, apperr.NotFoundf("open validation for submission %d", submissionID)
}

func (f *fakeValidationRepo) GetLatestBySubmission(_ context.Context, submissionID int64) (models.Validation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.Validation
	for _, v := range f.items {
		if v.SubmissionID != submissionID {
			continue
		}
		if latest == nil || v.CreatedAt.After(latest.CreatedAt) {
			latest = v
		}
	}
	if latest == nil {
		return models.Validation{}, apperr.NotFoundf("validation for submission %d", submissionID)
	}
	return *latest, nil
}

func (f *fakeValidationRepo) ListBySubmission(_ context.Context, submissionID int64) ([]models.Validation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Validation
	for _, v := range f.items {
		if v.SubmissionID == submissionID {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeValidationRepo) ListPending(ctx context.Context) ([]models.Validation, error) {
	f.mu.Lock()
	pending := make([]models.Validation, 0)
	for _, v := range f.items {
		if v.Status == models.SubmissionStatusPending {
			pending = append(pending, *v)
		}
	}
	f.mu.Unlock()

	var out []models.Validation
	for _, v := range pending {
		submission, err := f.subs.GetByID(ctx, v.SubmissionID)
		if err != nil {
			continue
		}
		if submission.Status == models.SubmissionStatusPending {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeValidationRepo) ListAll(_ context.Context) ([]models.Validation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Validation
	for _, v := range f.items {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int64]models.User
}

func (f *fakeUserRepo) CreateUser(_ context.Context, email, password, displayName string, role models.UserRole) (models.User, error) {
	return models.User{}, errors.New("not implemented")
}

func (f *fakeUserRepo) AuthenticateUser(_ context.Context, email, password string) (models.User, error) {
	return models.User{}, errors.New("not implemented")
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return models.User{}, apperr.NotFoundf("user %d", id)
	}
	return user, nil
}

func (f *fakeUserRepo) ListByRoles(_ context.Context, roles []models.UserRole) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		for _, role := range roles {
			if u.Role == role && u.IsActive {
				out = append(out, u)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeNotificationRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*models.Notification
}

func (f *fakeNotificationRepo) Create(_ context.Context, recipientID int64, message string) (models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	now := time.Now().Add(time.Duration(f.nextID) * time.Millisecond)
	notif := models.Notification{ID: f.nextID, RecipientID: recipientID, Message: message, CreatedAt: now, UpdatedAt: now}
	f.items[notif.ID] = &notif
	return notif, nil
}

func (f *fakeNotificationRepo) ListByRecipient(_ context.Context, recipientID int64) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.items {
		if n.RecipientID == recipientID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, recipientID, notificationID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.items[notificationID]
	if !ok || n.RecipientID != recipientID || n.Read {
		return 0, nil
	}
	n.Read = true
	n.UpdatedAt = time.Now()
	return 1, nil
}

func (f *fakeNotificationRepo) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for id, n := range f.items {
		if n.Read && n.UpdatedAt.Before(cutoff) {
			delete(f.items, id)
			deleted++
		}
	}
	return deleted, nil
}

// env wires the fakes into a real lifecycle service with a real dispatcher.
type env struct {
	formats *fakeFormatRepo
	subs    *fakeSubmissionRepo
	vals    *fakeValidationRepo
	users   *fakeUserRepo
	notifs  *fakeNotificationRepo
	svc     Service
}

func newEnv() *env {
	formats := &fakeFormatRepo{items: map[int64]*models.Format{}}
	users := &fakeUserRepo{users: map[int64]models.User{
		1: {ID: 1, Email: "ana@example.com", DisplayName: "Ana", Role: models.RoleUser, IsActive: true},
		2: {ID: 2, Email: "victor@example.com", DisplayName: "Victor", Role: models.RoleValidator, IsActive: true},
		3: {ID: 3, Email: "root@example.com", DisplayName: "Root", Role: models.RoleAdmin, IsActive: true},
		4: {ID: 4, Email: "carla@example.com", DisplayName: "Carla", Role: models.RoleCreator, IsActive: true},
	}}
	subs := &fakeSubmissionRepo{items: map[int64]*models.Submission{}, formats: formats, users: users}
	vals := &fakeValidationRepo{items: map[int64]*models.Validation{}, subs: subs}
	notifs := &fakeNotificationRepo{items: map[int64]*models.Notification{}}

	dispatcher := notification.NewService(notifs, users, zerolog.Nop())
	svc := NewService(subs, vals, formats, users, dispatcher, zerolog.Nop())

	return &env{formats: formats, subs: subs, vals: vals, users: users, notifs: notifs, svc: svc}
}
