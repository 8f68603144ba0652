package activity

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	ActivityType *ActivityType
	FailedOnly   bool
	Limit        int
	Offset       int
}
