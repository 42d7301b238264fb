package mailer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrQueueFull is returned when the dispatcher cannot accept another message.
	ErrQueueFull = errors.New("mail queue is full")
	// ErrStopped is returned after Shutdown or before Start.
	ErrStopped = errors.New("mail dispatcher is not running")
)

type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
	Logger      *logrus.Logger
}

// Dispatcher delivers messages asynchronously through a bounded queue and a
// fixed pool of workers. Send never blocks on the network.
type Dispatcher struct {
	cfg    DispatcherConfig
	sender Sender

	queue   chan Message
	wg      sync.WaitGroup
	mu      sync.RWMutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

var _ Sender = (*Dispatcher)(nil)

func NewDispatcher(cfg DispatcherConfig, sender Sender) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Dispatcher{
		cfg:    cfg,
		sender: sender,
		queue:  make(chan Message, cfg.QueueSize),
	}
}

// Start launches the workers. Pending messages are still delivered after ctx
// is cancelled; Shutdown drains them.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	d.ctx, d.cancel = context.WithCancel(context.WithoutCancel(ctx))
	d.running = true

	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	d.cfg.Logger.Infof("mail dispatcher started with %d workers", d.cfg.Workers)
}

// Send enqueues msg for delivery.
func (d *Dispatcher) Send(_ context.Context, msg Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.running {
		return ErrStopped
	}
	select {
	case d.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting messages, delivers what is queued and waits for the workers.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.cancel()
	d.cfg.Logger.Info("mail dispatcher stopped")
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(d.ctx, d.cfg.SendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, msg); err != nil {
		d.cfg.Logger.WithFields(logrus.Fields{
			"to":      msg.To,
			"subject": msg.Subject,
		}).Warnf("deliver mail: %v", err)
	}
}
