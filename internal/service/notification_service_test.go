package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fairprice/fairprice-backend/internal/models"
	"github.com/fairprice/fairprice-backend/internal/pkg/apperror"
	"github.com/fairprice/fairprice-backend/internal/repository"
)

type mockNotificationStore struct {
	mu            sync.Mutex
	notifications map[uuid.UUID]*models.Notification
}

func newMockNotificationStore() *mockNotificationStore {
	return &mockNotificationStore{notifications: make(map[uuid.UUID]*models.Notification)}
}

func (m *mockNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	m.notifications[n.ID] = n
	return nil
}

func (m *mockNotificationStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.notifications[id]; ok {
		copied := *n
		return &copied, nil
	}
	return nil, repository.ErrNotificationNotFound
}

func (m *mockNotificationStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Notification
	for _, n := range m.notifications {
		if n.UserID == nil || *n.UserID == userID {
			result = append(result, *n)
		}
	}
	return result, nil
}

func (m *mockNotificationStore) MarkAsRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return repository.ErrNotificationNotFound
	}
	n.IsRead = true
	return nil
}

func (m *mockNotificationStore) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.UserID != nil && *n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationStore) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.notifications {
		if !n.IsRead && (n.UserID == nil || *n.UserID == userID) {
			count++
		}
	}
	return count, nil
}

// mockPusher собирает доставленные по WebSocket уведомления.
type mockPusher struct {
	mu        sync.Mutex
	toUser    map[uuid.UUID]int
	broadcast int
}

func newMockPusher() *mockPusher {
	return &mockPusher{toUser: make(map[uuid.UUID]int)}
}

func (m *mockPusher) BroadcastToUser(userID uuid.UUID, event string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toUser[userID]++
	return nil
}

func (m *mockPusher) BroadcastToAll(event string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcast++
	return nil
}

func (m *mockPusher) waitForUser(t *testing.T, userID uuid.UUID) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		delivered := m.toUser[userID]
		m.mu.Unlock()
		if delivered > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("уведомление не доставлено по WebSocket")
}

func TestNotificationService_Notify(t *testing.T) {
	store := newMockNotificationStore()
	pusher := newMockPusher()
	svc := NewNotificationService(store, pusher)

	userID := uuid.New()
	notification, err := svc.Notify(context.Background(), &userID, "order_status", "Заказ отправлен", nil)
	if err != nil {
		t.Fatalf("создание уведомления: %v", err)
	}
	if notification.ID == uuid.Nil {
		t.Error("уведомление должно сохраниться до доставки")
	}

	// Живая доставка идёт после записи, дожидаемся её.
	pusher.waitForUser(t, userID)

	count, err := svc.CountUnread(context.Background(), userID)
	if err != nil {
		t.Fatalf("подсчёт непрочитанных: %v", err)
	}
	if count != 1 {
		t.Errorf("должно быть одно непрочитанное, получили %d", count)
	}
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	store := newMockNotificationStore()
	svc := NewNotificationService(store, nil)
	ctx := context.Background()

	userID := uuid.New()
	personal, err := svc.Notify(ctx, &userID, "coupon_issued", "Вам выдан купон", nil)
	if err != nil {
		t.Fatalf("создание уведомления: %v", err)
	}

	if err := svc.MarkAsRead(ctx, personal.ID, userID); err != nil {
		t.Errorf("владелец должен отмечать своё уведомление: %v", err)
	}

	// Чужое личное уведомление отметить нельзя.
	foreign, err := svc.Notify(ctx, &userID, "order_status", "Заказ доставлен", nil)
	if err != nil {
		t.Fatalf("создание уведомления: %v", err)
	}
	if err := svc.MarkAsRead(ctx, foreign.ID, uuid.New()); err != apperror.ErrForbidden {
		t.Errorf("ожидался ErrForbidden, получили %v", err)
	}

	// Общую рассылку отмечает любой пользователь.
	broadcast, err := svc.Notify(ctx, nil, "announcement", "Распродажа в пятницу", nil)
	if err != nil {
		t.Fatalf("создание рассылки: %v", err)
	}
	if err := svc.MarkAsRead(ctx, broadcast.ID, uuid.New()); err != nil {
		t.Errorf("рассылку должен отмечать любой пользователь: %v", err)
	}
}

func TestNotificationService_MarkAllAsRead(t *testing.T) {
	store := newMockNotificationStore()
	svc := NewNotificationService(store, nil)
	ctx := context.Background()

	userID := uuid.New()
	for i := 0; i < 3; i++ {
		if _, err := svc.Notify(ctx, &userID, "order_status", "Обновление заказа", nil); err != nil {
			t.Fatalf("создание уведомления: %v", err)
		}
	}

	if err := svc.MarkAllAsRead(ctx, userID); err != nil {
		t.Fatalf("массовая отметка: %v", err)
	}
	count, _ := svc.CountUnread(ctx, userID)
	if count != 0 {
		t.Errorf("после массовой отметки непрочитанных быть не должно, получили %d", count)
	}

	// Повторный вызов идемпотентен.
	if err := svc.MarkAllAsRead(ctx, userID); err != nil {
		t.Errorf("повторная отметка должна проходить без ошибки: %v", err)
	}
}
