// Collidesim runs a bouncing-ball scene through the collision pipeline and
// logs pair activity. It exists to exercise the library end to end and to
// eyeball broad/narrow phase behavior under sustained motion.
package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/collidelabs/collide"
)

var (
	isDebug    = flag.Bool("debug", false, "Enable debug log output")
	configPath = flag.String("config", "config.toml", "Scene config file")
)

// ghostSlot is the collision group slot shared by non-interacting balls.
const ghostSlot = 1

func main() {
	flag.Parse()

	var logger *zap.Logger
	if *isDebug {
		logger = unwrap(zap.NewDevelopment())
	} else {
		logger = unwrap(zap.NewProduction())
	}
	defer logger.Sync()

	config, err := readConfig(*configPath)
	if err != nil {
		logger.Error("Read config fail", zap.Error(err))
		return
	}

	logger.Info("Scene start",
		zap.Int("balls", config.Balls),
		zap.Float64("world-size", config.WorldSize),
		zap.Duration("duration", config.Duration.Duration))
	defer logger.Info("Scene exit")

	run(logger, config)
}

func run(logger *zap.Logger, config Config) {
	rng := rand.New(rand.NewSource(config.Seed))

	bp := collide.NewBroadPhase(config.Margin)
	bp.SetLogger(logger)
	np := collide.NewNarrowPhase()
	np.SetLogger(logger)
	dispatch := collide.NewDefaultDispatch(collide.ManifoldPoints2D)

	var pairEvents, contactEvents int
	np.OnContact(func(a, b collide.ObjectId, started bool) {
		contactEvents++
		logger.Debug("contact",
			zap.Uint64("a", uint64(a)), zap.Uint64("b", uint64(b)),
			zap.Bool("started", started))
	})

	// Every fifth ball is a ghost: ghosts pass through each other but still
	// collide with everything else.
	groups := map[collide.ObjectId]collide.CollisionGroups{}

	balls := make([]*ball, config.Balls)
	for i := range balls {
		b := &ball{
			tag: uuid.New(),
			obj: &collide.Object{
				ID:    collide.ObjectId(i),
				Shape: collide.Ball{Radius: config.Radius},
				Query: collide.Contacts(config.Prediction),
			},
			pos: collide.Vector{
				X: rng.Float64() * config.WorldSize,
				Y: rng.Float64() * config.WorldSize,
			},
			vel: collide.Vector{
				X: rng.Float64()*2 - 1,
				Y: rng.Float64()*2 - 1,
			}.Mult(config.Speed),
		}
		b.obj.Pose = collide.NewTransformTranslate(b.pos)
		g := collide.NewCollisionGroups()
		g.SetMembership(ghostSlot, i%5 == 0)
		if i%5 == 0 {
			g.SetBlacklist(ghostSlot, true)
		}
		groups[b.obj.ID] = g

		balls[i] = b
		bp.DeferredAdd(b.obj.ID, b.obj.Shape.BB(b.obj.Pose), b)
		logger.Debug("spawn",
			zap.Uint64("id", uint64(b.obj.ID)),
			zap.Stringer("tag", b.tag))
	}
	filter := collide.GroupFilter(groups)

	onPair := func(a, b collide.ObjectId, payloadA, payloadB interface{}, started bool) {
		pairEvents++
		np.HandleInteraction(dispatch, payloadA.(*ball).obj, payloadB.(*ball).obj, started)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.Duration.Duration)
	defer cancel()
	limiter := rate.NewLimiter(rate.Every(config.TickEvery.Duration), 1)

	dt := config.TickEvery.Duration.Seconds()
	statsEvery := time.NewTicker(time.Second)
	defer statsEvery.Stop()

	for tick := 0; ; tick++ {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		for _, b := range balls {
			b.step(dt, config.WorldSize)
			bp.DeferredSetBB(b.obj.ID, b.obj.Shape.BB(b.obj.Pose))
		}
		bp.Update(filter, onPair)
		np.Update()

		select {
		case <-statsEvery.C:
			logger.Info("stats",
				zap.Int("tick", tick),
				zap.Int("broad-pairs", bp.PairCount()),
				zap.Int("contacts", len(np.ContactPairs())),
				zap.Int("pair-events", pairEvents),
				zap.Int("contact-events", contactEvents))
		default:
		}
	}
}

type ball struct {
	tag uuid.UUID
	obj *collide.Object

	pos, vel collide.Vector
}

// step integrates the ball and bounces it off the world walls.
func (b *ball) step(dt, worldSize float64) {
	b.pos = b.pos.Add(b.vel.Mult(dt))
	if b.pos.X < 0 || b.pos.X > worldSize {
		b.vel.X = -b.vel.X
		b.pos.X = collide.Clamp(b.pos.X, 0, worldSize)
	}
	if b.pos.Y < 0 || b.pos.Y > worldSize {
		b.vel.Y = -b.vel.Y
		b.pos.Y = collide.Clamp(b.pos.Y, 0, worldSize)
	}
	b.obj.Pose = collide.NewTransformTranslate(b.pos)
}

type Config struct {
	Balls      int      `toml:"balls"`
	Radius     float64  `toml:"radius"`
	WorldSize  float64  `toml:"world-size"`
	Margin     float64  `toml:"margin"`
	Speed      float64  `toml:"speed"`
	Prediction float64  `toml:"prediction"`
	Seed       int64    `toml:"seed"`
	Duration   duration `toml:"duration"`
	TickEvery  duration `toml:"tick-every"`
}

func defaultConfig() Config {
	return Config{
		Balls:     50,
		Radius:    1,
		WorldSize: 60,
		Margin:    0.2,
		Speed:     5,
		Seed:      1,
		Duration:  duration{10 * time.Second},
		TickEvery: duration{time.Second / 60},
	}
}

func readConfig(path string) (Config, error) {
	c := defaultConfig()
	meta, err := toml.DecodeFile(path, &c)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return Config{}, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		var err errUnknownConfig
		for _, key := range undecoded {
			err = append(err, key.String())
		}
		return Config{}, err
	}
	return c, nil
}

type errUnknownConfig []string

func (e errUnknownConfig) Error() string {
	return "unknown config keys: [" + strings.Join(e, ", ") + "]"
}

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))
	return
}

func unwrap[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
