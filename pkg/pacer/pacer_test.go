package pacer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tacusci/logging/v2"
	"github.com/tauraamui/framegrab/pkg/frame"
	"github.com/tauraamui/framegrab/pkg/pacer"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeSource struct {
	clock    *fakeClock
	cost     time.Duration
	costs    []time.Duration
	next     byte
	failAt   int
	failWith error
	acquired int
}

func (s *fakeSource) Open(context.Context, *frame.Buffer) error { return nil }

func (s *fakeSource) Acquire(_ context.Context, buf *frame.Buffer) error {
	s.acquired++
	if s.failWith != nil && s.acquired == s.failAt {
		return frame.NewError(frame.OpAcquire, "fake", s.failWith)
	}
	cost := s.cost
	if len(s.costs) > 0 {
		cost = s.costs[0]
		s.costs = s.costs[1:]
	}
	s.clock.Advance(cost)
	s.next++
	buf.Pix[0] = s.next
	return nil
}

func (s *fakeSource) Close() error { return nil }

func (s *fakeSource) String() string { return "fake" }

type fakeConsumer struct {
	clock      *fakeClock
	cost       time.Duration
	displayed  []byte
	deliveries []time.Time
	flushes    int
	displayErr error
	flushErr   error
}

func (c *fakeConsumer) Display(buf *frame.Buffer) error {
	if c.displayErr != nil {
		return c.displayErr
	}
	c.clock.Advance(c.cost)
	c.displayed = append(c.displayed, buf.Pix[0])
	c.deliveries = append(c.deliveries, c.clock.Now())
	return nil
}

func (c *fakeConsumer) Flush() error {
	if c.flushErr != nil {
		return c.flushErr
	}
	c.flushes++
	return nil
}

type PacerTestSuite struct {
	suite.Suite
	clock     *fakeClock
	waits     []time.Duration
	resetNow  func()
	resetWait func()
	buf       *frame.Buffer
	src       *fakeSource
	consumer  *fakeConsumer
}

func TestPacerTestSuite(t *testing.T) {
	suite.Run(t, &PacerTestSuite{})
}

func (suite *PacerTestSuite) SetupSuite() {
	logging.CurrentLoggingLevel = logging.SilentLevel
}

func (suite *PacerTestSuite) TearDownSuite() {
	logging.CurrentLoggingLevel = logging.WarnLevel
}

func (suite *PacerTestSuite) SetupTest() {
	suite.clock = &fakeClock{now: time.Date(2021, 3, 17, 13, 0, 0, 0, time.UTC)}
	suite.waits = nil
	suite.resetNow = pacer.OverloadTimeNow(suite.clock.Now)
	suite.resetWait = pacer.OverloadWait(func(_ context.Context, d time.Duration) error {
		suite.waits = append(suite.waits, d)
		suite.clock.Advance(d)
		return nil
	})

	suite.buf = frame.NewBuffer()
	require.NoError(suite.T(), suite.buf.Prepare(frame.Dimensions{W: 2, H: 2}, frame.Gray8, frame.Establish))
	suite.src = &fakeSource{clock: suite.clock}
	suite.consumer = &fakeConsumer{clock: suite.clock}
}

func (suite *PacerTestSuite) TearDownTest() {
	suite.resetNow()
	suite.resetWait()
}

func (suite *PacerTestSuite) TestRunsExactlyCountIterations() {
	loop := pacer.Loop{Count: 7}
	stats, err := loop.Run(context.Background(), suite.src, suite.buf, suite.consumer)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), 7, stats.Iterations)
	assert.Equal(suite.T(), 7, suite.src.acquired)
	assert.Equal(suite.T(), []byte{1, 2, 3, 4, 5, 6, 7}, suite.consumer.displayed)
	assert.Equal(suite.T(), 7, suite.consumer.flushes)
}

func (suite *PacerTestSuite) TestZeroCountDoesNothing() {
	stats, err := pacer.Loop{Count: 0, Period: time.Second}.Run(
		context.Background(), suite.src, suite.buf, suite.consumer,
	)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, stats.Iterations)
	assert.Equal(suite.T(), 0, suite.src.acquired)
	assert.Empty(suite.T(), suite.waits)
}

func (suite *PacerTestSuite) TestFastIterationsWaitOutThePeriod() {
	suite.src.cost = 15 * time.Millisecond
	suite.consumer.cost = 5 * time.Millisecond

	loop := pacer.Loop{Count: 4, Period: 40 * time.Millisecond}
	stats, err := loop.Run(context.Background(), suite.src, suite.buf, suite.consumer)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), []time.Duration{
		20 * time.Millisecond, 20 * time.Millisecond, 20 * time.Millisecond, 20 * time.Millisecond,
	}, suite.waits)

	for i := 1; i < len(suite.consumer.deliveries); i++ {
		gap := suite.consumer.deliveries[i].Sub(suite.consumer.deliveries[i-1])
		assert.GreaterOrEqual(suite.T(), int64(gap), int64(40*time.Millisecond))
	}
	assert.Equal(suite.T(), 160*time.Millisecond, stats.Elapsed)
	assert.Equal(suite.T(), 20*time.Millisecond, stats.Slowest)
}

func (suite *PacerTestSuite) TestSlowIterationsAreNotDelayed() {
	suite.src.costs = []time.Duration{
		50 * time.Millisecond, 40 * time.Millisecond, 10 * time.Millisecond,
	}

	loop := pacer.Loop{Count: 3, Period: 40 * time.Millisecond}
	stats, err := loop.Run(context.Background(), suite.src, suite.buf, suite.consumer)
	require.NoError(suite.T(), err)

	// over and exactly on the period: no wait, under: wait the remainder
	assert.Equal(suite.T(), []time.Duration{30 * time.Millisecond}, suite.waits)

	gaps := []time.Duration{
		suite.consumer.deliveries[1].Sub(suite.consumer.deliveries[0]),
		suite.consumer.deliveries[2].Sub(suite.consumer.deliveries[1]),
	}
	assert.Equal(suite.T(), []time.Duration{40 * time.Millisecond, 10 * time.Millisecond}, gaps)
	assert.Equal(suite.T(), 50*time.Millisecond, stats.Slowest)
}

func (suite *PacerTestSuite) TestZeroPeriodNeverWaits() {
	suite.src.cost = time.Millisecond
	_, err := pacer.Loop{Count: 5}.Run(context.Background(), suite.src, suite.buf, suite.consumer)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), suite.waits)
}

func (suite *PacerTestSuite) TestAcquireFailureHaltsWithoutDelivering() {
	suite.src.failAt = 3
	suite.src.failWith = frame.ErrFileNotFound

	stats, err := pacer.Loop{Count: 10, Period: 40 * time.Millisecond}.Run(
		context.Background(), suite.src, suite.buf, suite.consumer,
	)
	require.Error(suite.T(), err)
	assert.True(suite.T(), frame.IsAcquireError(err))
	assert.True(suite.T(), errors.Is(err, frame.ErrFileNotFound))

	assert.Equal(suite.T(), 2, stats.Iterations)
	assert.Equal(suite.T(), 3, suite.src.acquired)
	assert.Equal(suite.T(), []byte{1, 2}, suite.consumer.displayed)
	assert.Len(suite.T(), suite.waits, 2)
}

func (suite *PacerTestSuite) TestDisplayFailureHalts() {
	suite.consumer.displayErr = errors.New("window closed")

	stats, err := pacer.Loop{Count: 10}.Run(context.Background(), suite.src, suite.buf, suite.consumer)
	assert.True(suite.T(), frame.IsDisplayError(err))
	assert.True(suite.T(), errors.Is(err, frame.ErrDisplay))
	assert.Equal(suite.T(), 0, stats.Iterations)
	assert.Equal(suite.T(), 1, suite.src.acquired)
	assert.Equal(suite.T(), 0, suite.consumer.flushes)
}

func (suite *PacerTestSuite) TestFlushFailureHalts() {
	suite.consumer.flushErr = errors.New("display gone")

	_, err := pacer.Loop{Count: 10}.Run(context.Background(), suite.src, suite.buf, suite.consumer)
	assert.True(suite.T(), frame.IsDisplayError(err))
	assert.Contains(suite.T(), err.Error(), "display gone")
	assert.Equal(suite.T(), 1, suite.src.acquired)
}

func (suite *PacerTestSuite) TestCancelledContextStopsBeforeNextIteration() {
	ctx, cancel := context.WithCancel(context.Background())
	suite.resetWait()
	suite.resetWait = pacer.OverloadWait(func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	})

	stats, err := pacer.Loop{Count: 10, Period: time.Second}.Run(ctx, suite.src, suite.buf, suite.consumer)
	assert.True(suite.T(), errors.Is(err, context.Canceled))
	assert.Equal(suite.T(), 1, stats.Iterations)
	assert.Equal(suite.T(), 1, suite.src.acquired)
}

func TestDeliverCallsDisplayThenFlush(t *testing.T) {
	clock := &fakeClock{}
	consumer := &fakeConsumer{clock: clock}
	buf := frame.NewBuffer()
	require.NoError(t, buf.Prepare(frame.Dimensions{W: 1, H: 1}, frame.Gray8, frame.Establish))
	buf.Pix[0] = 42

	require.NoError(t, pacer.Deliver(buf, consumer))
	assert.Equal(t, []byte{42}, consumer.displayed)
	assert.Equal(t, 1, consumer.flushes)
}

func TestRunPacesInRealTime(t *testing.T) {
	logging.CurrentLoggingLevel = logging.SilentLevel
	defer func() { logging.CurrentLoggingLevel = logging.WarnLevel }()

	clock := &fakeClock{}
	src := &fakeSource{clock: clock}
	consumer := &fakeConsumer{clock: clock}
	buf := frame.NewBuffer()
	require.NoError(t, buf.Prepare(frame.Dimensions{W: 1, H: 1}, frame.Gray8, frame.Establish))

	period := 15 * time.Millisecond
	start := time.Now()
	stats, err := pacer.Loop{Count: 5, Period: period}.Run(context.Background(), src, buf, consumer)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Iterations)
	assert.GreaterOrEqual(t, int64(time.Since(start)), int64(5*period))
}
