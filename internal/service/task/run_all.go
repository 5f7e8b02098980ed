package task

import (
	"context"
	"sync"
	"time"

	applog "github.com/darkkaiser/morning-brief/pkg/log"
)

// DefaultMaxParallelism maxParallelism이 0 이하일 때 사용하는 동시 실행 수
const DefaultMaxParallelism = 4

type job struct {
	index int
	task  Task
}

// RunAll 작업들을 최대 maxParallelism개의 워커로 실행하고, 모든 작업이 끝날 때까지 기다린 뒤 결과를 반환합니다.
//
// 작업이 에러를 반환하거나 패닉을 일으키면 해당 작업의 Fallback을 결과로 사용합니다.
// 반환되는 Bundle에는 모든 작업 이름이 정확히 한 번씩 포함되며, Completion 목록은 작업 목록의 순서를 따릅니다.
// 이름이 중복된 작업은 첫 번째 것만 실행합니다.
//
// 실행 중인 작업을 취소하지 않습니다. 작업별 제한 시간은 각 작업의 HTTP 클라이언트가 담당합니다.
func RunAll(ctx context.Context, tasks []Task, maxParallelism int) (Bundle, []Completion) {
	if maxParallelism <= 0 {
		maxParallelism = DefaultMaxParallelism
	}

	unique := dedupe(tasks)

	bundle := make(Bundle, len(unique))
	completions := make([]Completion, len(unique))
	if len(unique) == 0 {
		return bundle, completions
	}

	workers := min(maxParallelism, len(unique))

	jobC := make(chan job, len(unique))
	for i, t := range unique {
		jobC <- job{index: i, task: t}
	}
	close(jobC)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := range jobC {
				value, c := execute(ctx, j.task)

				mu.Lock()
				bundle[j.task.Name] = value
				completions[j.index] = c
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return bundle, completions
}

// execute 작업 하나를 실행합니다. 에러와 패닉을 모두 잡아 Fallback으로 대체합니다.
func execute(ctx context.Context, t Task) (value any, c Completion) {
	c.Name = t.Name
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			c.Err = newPanicError(r)
			c.Panicked = true
			value = t.Fallback
		}

		c.Elapsed = time.Since(start)
		logCompletion(c)
	}()

	if t.Run == nil {
		c.Err = newPanicError("실행 함수가 지정되지 않았습니다")
		return t.Fallback, c
	}

	v, err := t.Run(ctx)
	if err != nil {
		c.Err = err
		return t.Fallback, c
	}

	return v, c
}

func logCompletion(c Completion) {
	fields := applog.Fields{
		"task":    c.Name,
		"elapsed": c.Elapsed.Round(time.Millisecond).String(),
	}

	if c.Err != nil {
		fields["error"] = c.Err
		if c.Panicked {
			fields["panic"] = true
		}
		applog.WithComponentAndFields(component, fields).Error("작업 실패")
		return
	}

	applog.WithComponentAndFields(component, fields).Info("작업 완료")
}

func dedupe(tasks []Task) []Task {
	seen := make(map[string]struct{}, len(tasks))
	unique := make([]Task, 0, len(tasks))

	for _, t := range tasks {
		if _, dup := seen[t.Name]; dup {
			applog.WithComponentAndFields(component, applog.Fields{
				"task": t.Name,
			}).Error("중복된 작업 이름: 첫 번째 작업만 실행합니다")
			continue
		}
		seen[t.Name] = struct{}{}
		unique = append(unique, t)
	}

	return unique
}
