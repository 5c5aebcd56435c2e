package notify

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/taskflow/taskflow/internal/models"
	"github.com/taskflow/taskflow/pkg/email"
)

// Notifier enqueues task notifications. Implementations must not block
// the caller and must absorb delivery failures.
type Notifier interface {
	TaskCreated(user models.User, task models.Task)
}

// Dispatcher delivers task-created notifications from a background
// goroutine. Enqueueing is fire-and-forget: a full queue drops the
// notification with a log line instead of blocking the request.
type Dispatcher struct {
	mailer  email.Service
	queue   chan taskCreatedEvent
	wg      sync.WaitGroup
	timeout time.Duration
}

type taskCreatedEvent struct {
	user models.User
	task models.Task
}

// NewDispatcher creates a dispatcher with the given queue capacity and
// starts its delivery goroutine.
func NewDispatcher(mailer email.Service, capacity int) *Dispatcher {
	d := &Dispatcher{
		mailer:  mailer,
		queue:   make(chan taskCreatedEvent, capacity),
		timeout: 30 * time.Second,
	}

	d.wg.Add(1)
	go d.deliver()

	return d
}

// TaskCreated enqueues a task-created notification for the assignee.
func (d *Dispatcher) TaskCreated(user models.User, task models.Task) {
	select {
	case d.queue <- taskCreatedEvent{user: user, task: task}:
	default:
		log.Printf("notification queue full, dropping task-created notification for task %d", task.ID)
	}
}

// Close stops accepting notifications and waits for the queue to drain.
func (d *Dispatcher) Close() {
	close(d.queue)
	d.wg.Wait()
}

func (d *Dispatcher) deliver() {
	defer d.wg.Done()

	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.mailer.SendTaskCreatedEmail(ctx, &ev.user, &ev.task); err != nil {
			log.Printf("failed to deliver task-created notification for task %d: %v", ev.task.ID, err)
		}
		cancel()
	}
}
