package ecs

import (
	"reflect"
	"strings"
	"time"
)

// SchedulerStats summarizes how long each registered system has taken.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats are the timings of one system, in registration order.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type registeredSystem struct {
	system  System
	queries []func()
	stats   SystemStats
}

// Scheduler runs systems in registration order on the calling goroutine. One
// call to Once is one frame.
type Scheduler struct {
	storage *Storage
	systems []*registeredSystem
}

func NewScheduler(storage *Storage) *Scheduler {
	return &Scheduler{storage: storage}
}

// Register appends system to the frame and initializes its Query and Singleton fields.
func (s *Scheduler) Register(system System) {
	typ := reflect.TypeOf(system)
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	s.systems = append(s.systems, &registeredSystem{
		system:  system,
		queries: s.initializeFields(system),
		stats: SystemStats{
			Name:        typ.Name(),
			MinDuration: time.Duration(1<<63 - 1),
		},
	})
}

// initializeFields calls Init on every Query and Singleton field and returns the
// Execute methods of the queries.
func (s *Scheduler) initializeFields(system System) []func() {
	value := reflect.ValueOf(system)
	if value.Kind() == reflect.Pointer {
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil
	}

	storageArg := []reflect.Value{reflect.ValueOf(s.storage)}

	var executors []func()
	for i := range value.NumField() {
		field := value.Field(i)
		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		name := field.Type().Name()
		isQuery := strings.HasPrefix(name, "Query[")
		if !isQuery && !strings.HasPrefix(name, "Singleton[") {
			continue
		}

		initMethod := field.Addr().MethodByName("Init")
		if !initMethod.IsValid() {
			panic("Init method not found on field: " + value.Type().Field(i).Name)
		}
		initMethod.Call(storageArg)

		if isQuery {
			execute := field.Addr().MethodByName("Execute")
			executors = append(executors, func() { execute.Call(nil) })
		}
	}
	return executors
}

// Once runs every system with delta time dt. Each system's queries are refreshed
// right before it runs, so it sees entities spawned by earlier frames only.
// Commands are flushed after the last system.
func (s *Scheduler) Once(dt float64) {
	frame := newUpdateFrame(dt, s.storage)

	for _, registered := range s.systems {
		start := time.Now()
		for _, execute := range registered.queries {
			execute()
		}
		registered.system.Execute(frame)
		elapsed := time.Since(start)

		st := &registered.stats
		st.ExecutionCount++
		st.LastDuration = elapsed
		st.TotalDuration += elapsed
		st.MinDuration = min(st.MinDuration, elapsed)
		st.MaxDuration = max(st.MaxDuration, elapsed)
	}

	frame.Commands.Flush(s.storage)
}

// GetStats returns a snapshot of the per-system timings.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Systems:     make([]SystemStats, len(s.systems)),
	}

	for i, registered := range s.systems {
		st := registered.stats
		if st.ExecutionCount > 0 {
			st.AvgDuration = st.TotalDuration / time.Duration(st.ExecutionCount)
		} else {
			st.MinDuration = 0
		}
		stats.Systems[i] = st
		stats.TotalExecutions += st.ExecutionCount
	}

	return stats
}
