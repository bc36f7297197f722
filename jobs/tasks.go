package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeOverdueSweep flags sent invoices past their due date.
	TaskTypeOverdueSweep = "invoice:overdue_sweep"
	// TaskTypeDueSoonCheck notifies about invoices falling due shortly.
	TaskTypeDueSoonCheck = "invoice:due_soon"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewOverdueSweepTask constructs the scheduled overdue sweep task.
func NewOverdueSweepTask() *asynq.Task {
	return asynq.NewTask(TaskTypeOverdueSweep, nil)
}

// NewDueSoonCheckTask constructs the scheduled due-soon check task.
func NewDueSoonCheckTask() *asynq.Task {
	return asynq.NewTask(TaskTypeDueSoonCheck, nil)
}
