package job

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/silinternational/claimflow/log"
	"github.com/silinternational/claimflow/workflow"
)

const (
	RefreshStats = "refresh_stats"
)

const defaultPollInterval = 30 * time.Second

// Args are the arguments of a single job run
type Args map[string]any

var handlers = map[string]func(context.Context, Args) error{
	RefreshStats: refreshStatsHandler,
}

var service *workflow.Service

// Init gives the job handlers access to the workflow service
func Init(svc *workflow.Service) {
	service = svc
}

// Run executes one job of the given type. Panics in the handler are recovered and reported as errors.
func Run(ctx context.Context, jobType string, args Args) (err error) {
	handler, ok := handlers[jobType]
	if !ok {
		return fmt.Errorf("unknown job type %q", jobType)
	}

	log.Debugf("starting %s job", jobType)
	start := time.Now().UTC()

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("panic in job handler %s: %s\n%s", jobType, r, debug.Stack())
			err = fmt.Errorf("panic in job %s: %v", jobType, r)
		}
	}()

	if err = handler(ctx, args); err != nil {
		log.Errorf("job %s failed: %s", jobType, err)
		return err
	}

	log.Debugf("completed %s job in %s", jobType, time.Since(start))
	return nil
}

// Poller runs a job right away and then once per interval, until it is stopped or its context ends
type Poller struct {
	interval time.Duration
	jobType  string
	args     Args

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewPoller makes a poller for the job type. A non-positive interval uses defaultPollInterval.
func NewPoller(interval time.Duration, jobType string, args Args) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Poller{
		interval: interval,
		jobType:  jobType,
		args:     args,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins polling in a new goroutine. It must be called at most once.
func (p *Poller) Start(ctx context.Context) {
	go p.loop(ctx)
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		_ = Run(ctx, p.jobType, p.args)

		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-ticker.C:
		}
	}
}

// Stop ends polling and waits for a running job to return. It is safe to call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
	<-p.done
}

// Done is closed once the poller has stopped
func (p *Poller) Done() <-chan struct{} {
	return p.done
}
