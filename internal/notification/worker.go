package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"bedstatus-backend/internal/model"
)

// TaskNotice is one notification job: a task that staff covering the
// service should hear about.
type TaskNotice struct {
	TaskID    string
	BedID     string
	ServiceID string
	Kind      int64
	Urgent    bool
}

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers for sending task notifications.
type WorkerPool struct {
	size    int
	jobs    chan TaskNotice
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan TaskNotice, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case notice := <-wp.jobs:
			log.Printf("Worker %d processing task %s (bed %s)", id, notice.TaskID, notice.BedID)
			wp.sendNotificationsForTask(ctx, notice)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch sends a job to the worker pool.
func (wp *WorkerPool) Dispatch(notice TaskNotice) {
	wp.jobs <- notice
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan TaskNotice {
	return wp.jobs
}

// sendNotificationsForTask fans the notice out to every subscription
// covering the task's service.
func (wp *WorkerPool) sendNotificationsForTask(ctx context.Context, notice TaskNotice) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_service_mapping ssm ON ssm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("ssm.service_id = ?", notice.ServiceID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for service %s: %v", notice.ServiceID, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	log.Printf("Sending %d notifications for task %s", len(subscriptions), notice.TaskID)

	message := fmt.Sprintf("Bed %s needs %s", notice.BedID, workLabel(notice.Kind))
	if notice.Urgent {
		message = "URGENT: " + message
	}
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

func workLabel(kind int64) string {
	if kind == model.StatusMaintenance {
		return "maintenance"
	}
	return "cleaning"
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == 410 {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
