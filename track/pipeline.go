package track

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cartops/proctools/errors"
	"github.com/cartops/proctools/logger"
)

// Pipeline executes an ordered sequence of members, each a Job or a bare
// Procedure, sequentially in one process invocation. There is no retry, no
// timeout, and no isolation between members: the first procedure error
// aborts the remainder of the pipeline.
type Pipeline struct {
	members []Member
	logsDir string
}

// NewPipeline attaches members for execution in declared order. Logfiles for
// each member are written under logsDir.
func NewPipeline(logsDir string, members ...Member) *Pipeline {
	return &Pipeline{members: members, logsDir: logsDir}
}

// Execute runs pipeline members in order, entirely on the calling goroutine.
//
// For a Job member the run row is written RUNNING before any procedure
// executes and COMPLETE after all succeed. A procedure error is logged with
// its stack, the job is marked FAILED with end_time set, and the error is
// returned immediately — members after the failing one never run. (Marking
// FAILED is a deliberate departure from legacy behavior that left the row
// incomplete; a run that still reads incomplete now means the process died
// before the terminal write could happen.)
func (p *Pipeline) Execute(ctx context.Context) error {
	// A nil member is a configuration error; reject the whole pipeline
	// before any state mutation.
	for _, member := range p.members {
		if member == nil {
			return errors.WithHint(errors.ErrInvalidMember,
				"pipeline members must be Jobs or Procedures")
		}
	}

	runID := uuid.NewString()
	for _, member := range p.members {
		if err := p.executeMember(ctx, member, runID); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) executeMember(ctx context.Context, member Member, runID string) error {
	startTime := time.Now()

	log, err := logger.NewMemberLog(p.logsDir, member.Name())
	if err != nil {
		return err
	}
	defer log.Close()

	log.Infow("Starting "+member.kind(), "member", member.Name(), "pipeline_run", runID)
	if err := member.markRunning(); err != nil {
		return err
	}

	for _, procedure := range member.steps() {
		if err := runProcedure(ctx, procedure); err != nil {
			log.Errorw("Unhandled exception",
				"member", member.Name(),
				"pipeline_run", runID,
				"error", err,
				"stack", fmt.Sprintf("%+v", err),
			)
			if markErr := member.markTerminal(StatusFailed); markErr != nil {
				log.Errorw("Failed to record failed status",
					"member", member.Name(), "error", markErr)
			}
			return errors.Wrapf(err, "%s %s", member.kind(), member.Name())
		}
	}

	if err := member.markTerminal(StatusComplete); err != nil {
		return err
	}
	logElapsed(log, startTime)
	log.Infow(member.Name()+" "+StatusComplete.Description(), "pipeline_run", runID)
	return nil
}

// runProcedure converts a procedure panic into an error so the pipeline's
// failure path (log, mark failed, abort) applies uniformly.
func runProcedure(ctx context.Context, procedure ProcedureFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("procedure panic: %v", r)
		}
	}()
	return procedure(ctx)
}

func logElapsed(log *logger.MemberLog, startTime time.Time) {
	delta := time.Since(startTime)
	log.Infof("Elapsed: %d hrs, %d min, %d sec.",
		int(delta.Hours()),
		int(delta.Minutes())%60,
		int(delta.Seconds())%60,
	)
}
