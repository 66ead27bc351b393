package model

// NotificationKind classifies a notification job.
type NotificationKind string

const (
	NotifyDueSoon NotificationKind = "DUE_SOON"
	NotifyOverdue NotificationKind = "OVERDUE"
)

// Job is a queued notification for a background worker.
type Job struct {
	Kind    NotificationKind
	UserID  int64
	LoanID  int64
	BookID  int64
	DueDate int64
}

type JobList []Job
