package scheduler

// DirectCallback forwards task submissions from an executing update function
// straight back to the owning scheduler on behalf of one worker. Callbacks
// are created with the scheduler and live exactly as long as it does.
type DirectCallback struct {
	sched  *Scheduler
	worker int
}

// Worker returns the id of the worker this callback submits for.
func (c *DirectCallback) Worker() int { return c.worker }

// AddTask submits vertex v with the given update function and priority.
func (c *DirectCallback) AddTask(v int, fn UpdateFunc, priority float64) {
	c.sched.AddTask(NewTask(v, fn), priority)
}

// AddTasks submits every vertex in vs with the given function and priority.
func (c *DirectCallback) AddTasks(vs []int, fn UpdateFunc, priority float64) {
	c.sched.AddTasks(vs, fn, priority)
}
