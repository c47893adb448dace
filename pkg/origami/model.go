// Package origami is a contract layer for predictive models: it enforces
// shape and integrity guarantees on training and inference data, and
// transparently memoizes inference calls to a persistent content-addressed
// cache that survives process restarts.
package origami

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/usr-ein/origami/internal/forecast"
	"github.com/usr-ein/origami/internal/memo"
	"github.com/usr-ein/origami/internal/snapshot"
	"github.com/usr-ein/origami/internal/tensor"
)

// Engine supplies the two customization points of the model lifecycle.
// The surrounding Model runs validation and memoization around every call,
// regardless of the concrete engine.
type Engine interface {
	// Kind names the engine for snapshot type checks.
	Kind() string
	// Fit estimates the engine state from training data.
	Fit(data *Dense, maxLag int) error
	// Infer computes a forecast from fitted state. It must be
	// deterministic: the memo cache replays stored results in its place.
	Infer(data *Dense, steps int) (*Dense, error)
	// Snapshot and Restore carry the fitted state across dump and load.
	Snapshot() ([]byte, error)
	Restore(state []byte) error
}

// Config carries the recognized model settings. Unknown settings are
// impossible by construction; there is no attribute bag.
type Config struct {
	// CacheRoot is the directory under which persistent cache
	// generations are created. Defaults to "model_cache".
	CacheRoot string
	// CacheBackend picks the persistent store: "badger" (default),
	// "sqlite", or "memory".
	CacheBackend string
	// SkipOutputCheck disables integrity validation of predicted frames.
	// Output checks are on by default; turning them off can help when
	// debugging a faulty forecast.
	SkipOutputCheck bool
	// Logger receives debug-level cache and lifecycle events. Defaults
	// to a no-op logger.
	Logger *zerolog.Logger
}

// DefaultCacheRoot is the conventional relative cache directory.
const DefaultCacheRoot = "model_cache"

func (c Config) normalize() (Config, error) {
	if c.CacheRoot == "" {
		c.CacheRoot = DefaultCacheRoot
	}
	if c.CacheBackend == "" {
		c.CacheBackend = memo.KindBadger
	}
	if !memo.ValidKind(c.CacheBackend) {
		return Config{}, fmt.Errorf("%w: unsupported cache backend %q", ErrInvalidArgument, c.CacheBackend)
	}
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}
	return c, nil
}

// Model wraps an Engine with the contract layer: shape validation on
// every boundary, a one-way untrained-to-trained lifecycle, and
// memoization of inference results.
type Model struct {
	engine      Engine
	inputShape  Shape
	outputShape Shape
	trained     bool
	cache       *memo.Cache
	cfg         Config
	log         zerolog.Logger
}

// New builds an untrained model. Both shapes are required, fixed for the
// model's lifetime, and must consist of positive dimensions.
func New(engine Engine, inputShape, outputShape Shape, cfg Config) (*Model, error) {
	if engine == nil {
		return nil, fmt.Errorf("%w: engine is required", ErrInvalidArgument)
	}
	if err := inputShape.Validate(); err != nil {
		return nil, fmt.Errorf("%w: input shape: %v", ErrInvalidArgument, err)
	}
	if err := outputShape.Validate(); err != nil {
		return nil, fmt.Errorf("%w: output shape: %v", ErrInvalidArgument, err)
	}
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	return &Model{
		engine:      engine,
		inputShape:  inputShape.Clone(),
		outputShape: outputShape.Clone(),
		cache:       memo.NewTransient(*cfg.Logger),
		cfg:         cfg,
		log:         *cfg.Logger,
	}, nil
}

func (m *Model) Trained() bool { return m.trained }

func (m *Model) InputShape() Shape { return m.inputShape.Clone() }

func (m *Model) OutputShape() Shape { return m.outputShape.Clone() }

// CacheLocation is the backing directory of the current cache generation,
// or "" while the cache is still transient.
func (m *Model) CacheLocation() string { return m.cache.Location() }

// Train fits the engine on data after validating the input contract, then
// attaches a fresh persistent cache generation. A failed fit leaves the
// model untrained and its cache untouched.
func (m *Model) Train(data *Dense, maxLag int) error {
	if maxLag == 0 {
		maxLag = forecast.DefaultMaxLag
	}
	if maxLag < 0 {
		return fmt.Errorf("%w: max lag must be positive, got %d", ErrInvalidArgument, maxLag)
	}
	if err := tensor.CheckShape(data, m.inputShape); err != nil {
		return err
	}

	if err := m.engine.Fit(data, maxLag); err != nil {
		return err
	}
	m.trained = true

	// A fresh generation per train call: earlier cached predictions can
	// never be replayed against the re-trained state.
	if err := m.attachGeneration(uuid.NewString()); err != nil {
		return err
	}
	m.log.Debug().Str("generation", m.cache.Generation()).Msg("model trained")
	return nil
}

func (m *Model) attachGeneration(generation string) error {
	if err := m.cache.Close(); err != nil {
		return fmt.Errorf("close previous cache: %w", err)
	}
	dir := ""
	if m.cfg.CacheBackend != memo.KindMemory {
		dir = memo.GenerationDir(m.cfg.CacheRoot, generation)
	}
	cache, err := memo.NewPersistent(m.cfg.CacheBackend, dir, generation, m.log)
	if err != nil {
		return err
	}
	m.cache = cache
	return nil
}

// tensorPayload is the serialized form of a cached prediction.
type tensorPayload struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

func encodeTensor(d *Dense) ([]byte, error) {
	return json.Marshal(tensorPayload{Shape: d.Shape(), Data: d.Data()})
}

func decodeTensor(data []byte) (*Dense, error) {
	var payload tensorPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode cached prediction: %w", err)
	}
	if payload.Data == nil {
		payload.Data = []float64{}
	}
	return tensor.New(Shape(payload.Shape), payload.Data)
}

// Predict validates the input contract, computes or replays the forecast
// through the memo cache, and validates the output contract. Predicting
// on an untrained model is an error, never a silent computation.
func (m *Model) Predict(data *Dense, steps int) (*Dense, error) {
	if !m.trained {
		return nil, ErrNotTrained
	}
	if steps < 0 {
		return nil, fmt.Errorf("%w: steps must be non-negative, got %d", ErrInvalidArgument, steps)
	}
	if err := tensor.CheckShape(data, m.inputShape); err != nil {
		return nil, err
	}

	input, err := encodeTensor(data)
	if err != nil {
		return nil, fmt.Errorf("encode input for cache key: %w", err)
	}
	key, err := memo.DeriveKey(m.cache.Generation(), "predict",
		memo.Arg{Name: "data", Value: json.RawMessage(input)},
		memo.Arg{Name: "steps", Value: steps},
	)
	if err != nil {
		return nil, err
	}

	stored, hit, err := m.cache.GetOrCompute(key, func() ([]byte, error) {
		out, err := m.engine.Infer(data, steps)
		if err != nil {
			return nil, err
		}
		return encodeTensor(out)
	})
	if err != nil {
		return nil, err
	}

	out, err := decodeTensor(stored)
	if err != nil {
		return nil, err
	}
	if err := tensor.CheckShape(out, m.outputShape); err != nil {
		return nil, err
	}
	m.log.Debug().Bool("cached", hit).Int("steps", steps).Msg("prediction served")
	return out, nil
}

// ClearCache drops the model's prediction cache. With softly=false the
// backing directory is removed from storage as well.
func (m *Model) ClearCache(softly bool) error {
	return m.cache.Clear(softly)
}

// Close releases the cache store without discarding cached entries.
func (m *Model) Close() error {
	return m.cache.Close()
}

// Dump serializes the whole model to path. The snapshot records a fresh
// cache generation of its own: instances loaded from the file share that
// generation with each other, but not with this live instance.
func (m *Model) Dump(path string) error {
	state, err := m.engine.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot engine: %w", err)
	}

	record := snapshot.Record{
		Kind:         m.engine.Kind(),
		Trained:      m.trained,
		InputShape:   m.inputShape,
		OutputShape:  m.outputShape,
		CheckOutput:  !m.cfg.SkipOutputCheck,
		CacheBackend: m.cfg.CacheBackend,
		CacheRoot:    m.cfg.CacheRoot,
		Engine:       state,
	}
	if m.trained {
		record.CacheGeneration = uuid.NewString()
	}
	if err := snapshot.Dump(record, path); err != nil {
		return err
	}
	m.log.Debug().Str("path", path).Str("generation", record.CacheGeneration).Msg("model dumped")
	return nil
}

// Load rebuilds a model from a dump. The engine must match the kind the
// file was written with. The loaded model adopts the cache generation
// recorded in the file, joining any other instance loaded from it.
func Load(path string, engine Engine, cfg Config) (*Model, error) {
	record, err := snapshot.Load(path)
	if err != nil {
		return nil, err
	}
	if record.Kind != engine.Kind() {
		return nil, fmt.Errorf("%w: file holds %q, expected %q", ErrTypeMismatch, record.Kind, engine.Kind())
	}
	if len(record.Engine) > 0 {
		if err := engine.Restore(record.Engine); err != nil {
			return nil, err
		}
	}

	cfg.CacheRoot = record.CacheRoot
	cfg.CacheBackend = record.CacheBackend
	cfg.SkipOutputCheck = !record.CheckOutput
	model, err := New(engine, Shape(record.InputShape), Shape(record.OutputShape), cfg)
	if err != nil {
		return nil, fmt.Errorf("rebuild model from %s: %w", path, err)
	}
	if record.Trained {
		model.trained = true
		if err := model.attachGeneration(record.CacheGeneration); err != nil {
			return nil, err
		}
	}
	return model, nil
}
