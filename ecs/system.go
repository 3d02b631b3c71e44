package ecs

// System is one step of the frame. Query and Singleton fields of a system struct
// are initialized by Scheduler.Register; other fields keep state across frames.
type System interface {
	Execute(frame *UpdateFrame)
}
