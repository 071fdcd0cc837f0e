// Package control runs a Cartesian trajectory on a joint position device through the CLIK controller.
package control

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/atomic"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/armcore/clik"
	"go.viam.com/armcore/kinematics"
	"go.viam.com/armcore/logging"
	"go.viam.com/armcore/trajectory"
)

// MaxFrequency is the highest supported loop frequency in Hz.
const MaxFrequency = 5000.

// JointDevice reads and commands joint positions in robot convention.
type JointDevice interface {
	JointPositions(ctx context.Context) ([]float64, error)
	SetJointPositions(ctx context.Context, q []float64) error
}

// LoopConfig configures a servo loop.
type LoopConfig struct {
	// Frequency is the cycle rate in Hz.
	Frequency float64 `json:"frequency_hz" mapstructure:"frequency_hz"`
	// Gain is the CLIK proportional gain.
	Gain float64 `json:"gain" mapstructure:"gain"`
	// NullSpaceGain scales the secondary objective.
	NullSpaceGain float64 `json:"null_space_gain" mapstructure:"null_space_gain"`
	// StopOnComplete stops a started loop once the trajectory is complete.
	StopOnComplete bool `json:"stop_on_complete" mapstructure:"stop_on_complete"`
}

// Loop holds the loop state.
type Loop struct {
	cfg       LoopConfig
	logger    logging.Logger
	clk       clock.Clock
	dt        time.Duration
	ctrl      *clik.Controller
	chain     *kinematics.Chain
	device    JointDevice
	traj      trajectory.Cartesian
	nullSpace trajectory.NullSpace

	mu          sync.Mutex
	initialized bool
	prevQuat    quat.Number
	last        clik.Result

	cycles                  atomic.Uint64
	running                 atomic.Bool
	activeBackgroundWorkers sync.WaitGroup
	cancel                  context.CancelFunc
}

// Option changes how a loop is built.
type Option func(*Loop)

// WithClock makes the loop tick on clk instead of the wall clock.
func WithClock(clk clock.Clock) Option {
	return func(l *Loop) {
		l.clk = clk
	}
}

// NewLoop returns a loop tracking a copy of traj with chain on device. nullSpace may be nil when
// NullSpaceGain is zero.
func NewLoop(
	logger logging.Logger,
	cfg LoopConfig,
	chain *kinematics.Chain,
	device JointDevice,
	traj trajectory.Cartesian,
	nullSpace trajectory.NullSpace,
	opts ...Option,
) (*Loop, error) {
	if !(cfg.Frequency > 0) || cfg.Frequency > MaxFrequency {
		return nil, errors.Errorf("loop frequency should be in (0, %.0f] Hz, got %f", MaxFrequency, cfg.Frequency)
	}
	if device == nil {
		return nil, errors.New("loop needs a joint device")
	}
	if traj == nil {
		return nil, errors.New("loop needs a trajectory")
	}
	if logger == nil {
		logger = logging.Global().Sublogger("control")
	}
	ctrl, err := clik.NewController(chain, logger)
	if err != nil {
		return nil, err
	}
	if nullSpace != nil && nullSpace.NumJoints() != chain.NumJoints() {
		return nil, kinematics.NewDimensionMismatchError("null space objective", chain.NumJoints(), nullSpace.NumJoints())
	}
	if nullSpace == nil && cfg.NullSpaceGain != 0 {
		return nil, errors.New("loop has a null space gain but no null space objective")
	}
	if nullSpace != nil {
		nullSpace = nullSpace.Clone()
	}
	l := &Loop{
		cfg:       cfg,
		logger:    logger,
		clk:       clock.New(),
		dt:        time.Duration(float64(time.Second) / cfg.Frequency),
		ctrl:      ctrl,
		chain:     chain,
		device:    device,
		traj:      traj.Clone(),
		nullSpace: nullSpace,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Period returns the cycle period.
func (l *Loop) Period() time.Duration {
	return l.dt
}

// Cycles returns the number of completed cycles.
func (l *Loop) Cycles() uint64 {
	return l.cycles.Load()
}

// Running reports whether the loop was started and not stopped.
func (l *Loop) Running() bool {
	return l.running.Load()
}

// LastResult returns the result of the last completed cycle.
func (l *Loop) LastResult() clik.Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

// Cycle runs one servo cycle at trajectory time t: read joints, sample the trajectory, resolve with CLIK and
// command the result. The first cycle initializes the trajectory from the current end effector pose. Limit
// violations are logged and do not stop the loop.
func (l *Loop) Cycle(ctx context.Context, t float64) (clik.Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	qRobot, err := l.device.JointPositions(ctx)
	if err != nil {
		return clik.Result{}, errors.Wrap(err, "reading joint positions")
	}
	qDH, err := l.chain.Robot2DH(qRobot)
	if err != nil {
		return clik.Result{}, err
	}
	if !l.initialized {
		if err := l.initialize(qDH); err != nil {
			return clik.Result{}, err
		}
	}

	var q0 []float64
	if l.nullSpace != nil && l.cfg.NullSpaceGain != 0 {
		if q0, err = l.nullSpace.JointVelocities(t, qDH, l.chain); err != nil {
			return clik.Result{}, err
		}
		mask := l.nullSpace.Mask()
		q0 = lo.Map(q0, func(v float64, i int) float64 {
			if mask[i] {
				return v
			}
			return 0
		})
	}

	res, err := l.ctrl.Track(clik.TrackInput{
		Q:                      qDH,
		DesiredPosition:        l.traj.Position(t),
		DesiredQuaternion:      l.traj.Quaternion(t),
		PreviousQuaternion:     l.prevQuat,
		DesiredLinearVelocity:  l.traj.LinearVelocity(t),
		DesiredAngularVelocity: l.traj.AngularVelocity(t),
		Mask:                   l.traj.Mask(),
		Gain:                   l.cfg.Gain,
		Ts:                     l.dt.Seconds(),
		NullSpaceGain:          l.cfg.NullSpaceGain,
		NullSpaceVelocity:      q0,
	})
	if err != nil {
		return clik.Result{}, err
	}
	l.prevQuat = res.Quaternion

	qOut, err := l.chain.DH2Robot(res.Q)
	if err != nil {
		return clik.Result{}, err
	}
	l.checkLimits(qOut, res.QDot)
	if err := l.device.SetJointPositions(ctx, qOut); err != nil {
		return clik.Result{}, errors.Wrap(err, "commanding joint positions")
	}
	l.last = res
	l.cycles.Inc()
	return res, nil
}

func (l *Loop) initialize(qDH []float64) error {
	ee, err := l.chain.Fkine(qDH)
	if err != nil {
		return err
	}
	if err := l.traj.Initialize(ee); err != nil {
		return errors.Wrap(err, "initializing trajectory")
	}
	if l.nullSpace != nil {
		if err := l.nullSpace.Initialize(qDH, l.chain); err != nil {
			return errors.Wrap(err, "initializing null space objective")
		}
	}
	l.prevQuat = ee.Quaternion()
	l.initialized = true
	return nil
}

func (l *Loop) checkLimits(qRobot, qDotDH []float64) {
	if err := l.chain.LimitsError(qRobot); err != nil {
		l.logger.Warnw("commanded joint positions exceed the hard limits", "error", err)
	}
	vRobot, err := l.chain.DH2RobotVel(qDotDH)
	if err != nil {
		return
	}
	if mask, exceeded, err := l.chain.ExceededHardVelocityLimits(vRobot); err == nil && exceeded {
		l.logger.Warnw("commanded joint velocities exceed the hard limits", "joints", l.chain.JointNamesFromMask(mask))
	} else if mask, exceeded, err := l.chain.ExceededSoftVelocityLimits(vRobot); err == nil && exceeded {
		l.logger.Debugw("commanded joint velocities exceed the soft limits", "joints", l.chain.JointNamesFromMask(mask))
	}
}

// Start runs cycles in the background at the configured frequency. The trajectory time is the time elapsed
// since Start.
func (l *Loop) Start() error {
	if !l.running.CompareAndSwap(false, true) {
		return errors.New("loop is already running")
	}
	if l.cancel != nil {
		l.cancel()
	}
	cancelCtx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.logger.Infow("starting servo loop", "frequency_hz", l.cfg.Frequency, "period", l.dt)

	start := l.clk.Now()
	ticker := l.clk.Ticker(l.dt)
	l.activeBackgroundWorkers.Add(1)
	utils.ManagedGo(func() {
		defer ticker.Stop()
		for {
			select {
			case <-cancelCtx.Done():
				return
			case now := <-ticker.C:
				t := now.Sub(start).Seconds()
				if _, err := l.Cycle(cancelCtx, t); err != nil {
					if cancelCtx.Err() != nil {
						return
					}
					l.logger.Errorw("servo cycle failed", "t", t, "error", err)
					continue
				}
				if l.cfg.StopOnComplete && l.traj.IsComplete(t) {
					l.logger.Infow("trajectory complete, stopping servo loop", "t", t, "cycles", l.Cycles())
					l.running.Store(false)
					return
				}
			}
		}
	}, l.activeBackgroundWorkers.Done)
	return nil
}

// Stop stops a started loop and waits for the running cycle to finish.
func (l *Loop) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
	l.activeBackgroundWorkers.Wait()
	l.running.Store(false)
}
