package scheduler

import "fmt"

// Stage - этап такта, на котором произошла ошибка
type Stage string

const (
	StagePersist   Stage = "persist"
	StageAlert     Stage = "alert"
	StageAnalytics Stage = "analytics"
)

// TickError - ошибка такта с указанием этапа
type TickError struct {
	Stage Stage
	Err   error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick failed at %s stage: %v", e.Stage, e.Err)
}

func (e *TickError) Unwrap() error {
	return e.Err
}
