package event

// Topics carried on the pub/sub bus.
const (
	TopicTaskEvents = "task-events"
	TopicReminders  = "reminders"
)

// Push delivery routes, one per subscribed topic.
const (
	RouteTaskEvents = "/events/task"
	RouteReminders  = "/events/reminder"
)

// Event types published on the bus.
const (
	TypeTaskCreated       = "task.created"
	TypeTaskUpdated       = "task.updated"
	TypeTaskCompleted     = "task.completed"
	TypeTaskDeleted       = "task.deleted"
	TypeTaskRecurred      = "task.recurred"
	TypeReminderScheduled = "reminder.scheduled"
	TypeReminderSent      = "reminder.sent"
	TypeReminderCancelled = "reminder.cancelled"
	TypeReminderDue       = "reminder.due"
	TypeUnknown           = "unknown"
)
