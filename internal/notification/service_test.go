package notification

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/formflow/formflow-api/internal/apperr"
	"github.com/formflow/formflow-api/internal/models"
)

type fakeNotificationRepo struct {
	mu      sync.Mutex
	nextID  int64
	items   map[int64]*models.Notification
	failFor map[int64]bool
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{items: map[int64]*models.Notification{}, failFor: map[int64]bool{}}
}

func (f *fakeNotificationRepo) Create(_ context.Context, recipientID int64, message string) (models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[recipientID] {
		return models.Notification{}, errors.New("storage unavailable")
	}
	f.nextID++
	now := time.Now().Add(time.Duration(f.nextID) * time.Millisecond)
	notif := models.Notification{
		ID:          f.nextID,
		RecipientID: recipientID,
		Message:     message,
		Read:        false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.items[notif.ID] = &notif
	out := notif
	return out, nil
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

func newTestService(repo *fakeNotificationRepo) Service {
	return NewService(repo, &fakeUserRepo{users: map[int64]models.User{}}, zerolog.Nop())
}

func TestNotifyCreatesUnread(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newTestService(repo)

	notif, err := svc.Notify(context.Background(), 1, "Leave Request submitted by Ana requires validation")
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if notif.Read {
		t.Error("new notification must be unread")
	}
	if notif.RecipientID != 1 {
		t.Errorf("recipient = %d", notif.RecipientID)
	}
}

func TestNotifyRejectsEmptyMessage(t *testing.T) {
	svc := newTestService(newFakeNotificationRepo())
	if _, err := svc.Notify(context.Background(), 1, "   "); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestNotifyAllContinuesOnFailure(t *testing.T) {
	repo := newFakeNotificationRepo()
	repo.failFor[2] = true
	svc := newTestService(repo)

	created := svc.NotifyAll(context.Background(), []int64{1, 2, 3}, "requires validation")

	if len(created) != 2 {
		t.Fatalf("expected 2 deliveries despite one failure, got %d", len(created))
	}
	for _, n := range created {
		if n.RecipientID == 2 {
			t.Error("failing recipient should not appear in results")
		}
	}
}

func TestListForNewestFirst(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	svc.Notify(ctx, 5, "first")
	svc.Notify(ctx, 5, "second")
	svc.Notify(ctx, 5, "third")

	notifications, err := svc.ListFor(ctx, 5)
	if err != nil {
		t.Fatalf("ListFor: %v", err)
	}
	if len(notifications) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(notifications))
	}
	if notifications[0].Message != "third" || notifications[2].Message != "first" {
		t.Errorf("expected newest first, got %q .. %q", notifications[0].Message, notifications[2].Message)
	}
}

func TestMarkReadIdempotent(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	notif, _ := svc.Notify(ctx, 1, "hello")

	if err := svc.MarkRead(ctx, 1, notif.ID); err != nil {
		t.Fatalf("first MarkRead: %v", err)
	}
	firstUpdate := repo.items[notif.ID].UpdatedAt

	if err := svc.MarkRead(ctx, 1, notif.ID); err != nil {
		t.Fatalf("second MarkRead must not error: %v", err)
	}
	if !repo.items[notif.ID].Read {
		t.Error("notification should stay read")
	}
	if !repo.items[notif.ID].UpdatedAt.Equal(firstUpdate) {
		t.Error("second MarkRead must not reset the retention clock")
	}
}

func TestMarkReadMissingIsNoOp(t *testing.T) {
	svc := newTestService(newFakeNotificationRepo())
	if err := svc.MarkRead(context.Background(), 1, 999); err != nil {
		t.Errorf("missing id must be a silent no-op, got %v", err)
	}
}

func TestSweepRetentionBoundary(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	oldRead, _ := svc.Notify(ctx, 1, "old and read")
	recentRead, _ := svc.Notify(ctx, 1, "recent and read")
	oldUnread, _ := svc.Notify(ctx, 1, "old but unread")

	repo.items[oldRead.ID].Read = true
	repo.items[oldRead.ID].UpdatedAt = time.Now().Add(-72 * time.Hour)
	repo.items[recentRead.ID].Read = true
	repo.items[recentRead.ID].UpdatedAt = time.Now().Add(-24 * time.Hour)
	repo.items[oldUnread.ID].UpdatedAt = time.Now().Add(-72 * time.Hour)

	deleted, err := svc.Sweep(ctx, 48*time.Hour)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected exactly 1 deletion, got %d", deleted)
	}
	if _, ok := repo.items[oldRead.ID]; ok {
		t.Error("old read notification should be swept")
	}
	if _, ok := repo.items[recentRead.ID]; !ok {
		t.Error("recent read notification must survive")
	}
	if _, ok := repo.items[oldUnread.ID]; !ok {
		t.Error("unread notification must survive regardless of age")
	}
}
