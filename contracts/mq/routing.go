package mq

// Routing keys on the habitpulse.events exchange.
const (
	RoutingActivityLogged     = "activity.logged"
	RoutingHabitStreakUpdated = "habit.streak.updated"
	RoutingUserStreakSnapshot = "user.streak.snapshot"
)

// Queue names owned by the analytics worker.
const (
	QueueActivityLogged = "analytics.activity.logged.q"
)
