// Package store implementa los stores de estado del cliente: cada uno es dueño
// exclusivo de una colección, la muta bajo su propio mutex y la re-persiste
// completa en cada mutación a través del puerto StateRepository.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/channah-state/internal/domain/repository"
)

// Claves de almacenamiento durable, una por store.
const (
	KeyCart           = "channah-cart"
	KeyWishlist       = "channah-wishlist"
	KeyComparison     = "channah-comparison"
	KeyDocuments      = "channah-documents"
	KeyPurchaseOrders = "channah-purchase-orders"
	KeySourcing       = "channah-sourcing"
	KeyAuth           = "channah-auth"
)

// persistTimeout tope de cada escritura al adaptador.
const persistTimeout = 5 * time.Second

// Options dependencias comunes de todos los stores.
type Options struct {
	Logger zerolog.Logger
	// Now reloj inyectable; por defecto time.Now.
	Now func() time.Time
	// WriteBehind > 0 agrupa escrituras: la mutación queda visible en memoria al instante
	// y el snapshot más reciente se escribe tras ese retardo (o en Flush/Close).
	WriteBehind time.Duration
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// newID genera un ID local: milisegundos + sufijo aleatorio.
func newID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s", now.UnixMilli(), suffix)
}

// base estado genérico compartido por los stores: slice protegido, persistencia y suscriptores.
type base[T any] struct {
	mu    sync.Mutex
	state T
	p     *persister
	subs  subscribers
	opts  Options
	log   zerolog.Logger
}

func newBase[T any](ctx context.Context, repo repository.StateRepository, key string, opts Options, initial T) *base[T] {
	log := opts.Logger.With().Str("store", key).Logger()
	b := &base[T]{
		state: initial,
		p:     newPersister(repo, key, opts.WriteBehind, log),
		opts:  opts,
		log:   log,
	}
	if raw := b.p.load(ctx); raw != nil {
		var loaded T
		if err := json.Unmarshal(raw, &loaded); err != nil {
			log.Warn().Err(err).Msg("estado persistido corrupto, se descarta")
		} else {
			if r, ok := any(&loaded).(repairer); ok {
				r.repair()
			}
			b.state = loaded
		}
	}
	return b
}

// repairer lo implementan los estados que deben restablecer sus invariantes al
// cargarse desde el almacenamiento (slices no nulos, unicidad, topes).
type repairer interface {
	repair()
}

// mutate ejecuta fn bajo el lock. Si fn devuelve true, el estado se persiste antes de soltar
// el lock (así las escrituras respetan el orden de las mutaciones) y luego se notifica.
func (b *base[T]) mutate(fn func(st *T) bool) bool {
	b.mu.Lock()
	changed := fn(&b.state)
	if changed {
		b.p.save(b.state)
	}
	b.mu.Unlock()
	if changed {
		b.subs.notify()
	}
	return changed
}

// read ejecuta fn bajo el lock, sin efectos.
func (b *base[T]) read(fn func(st *T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(&b.state)
}

// Subscribe registra fn para cada mutación efectiva. Devuelve la función para darse de baja.
func (b *base[T]) Subscribe(fn func()) (unsubscribe func()) {
	return b.subs.add(fn)
}

// Flush fuerza la escritura pendiente del modo write-behind.
func (b *base[T]) Flush(ctx context.Context) error {
	return b.p.flush(ctx)
}

// Close vacía la escritura pendiente; las mutaciones posteriores se escriben síncronas.
func (b *base[T]) Close(ctx context.Context) error {
	return b.p.close(ctx)
}

// subscribers lista de callbacks notificados tras cada mutación.
type subscribers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func()
}

func (s *subscribers) add(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[int]func())
	}
	id := s.next
	s.next++
	s.fns[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.fns, id)
		s.mu.Unlock()
	}
}

func (s *subscribers) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// persister serializa y escribe el snapshot de un store. Los errores de escritura se
// registran y nunca alteran el resultado de la mutación: la memoria es la fuente de verdad.
type persister struct {
	repo  repository.StateRepository
	key   string
	delay time.Duration
	log   zerolog.Logger

	writeMu sync.Mutex // serializa escrituras para que nunca gane un snapshot viejo
	mu      sync.Mutex
	pending []byte
	timer   *time.Timer
	closed  bool
}

func newPersister(repo repository.StateRepository, key string, delay time.Duration, log zerolog.Logger) *persister {
	return &persister{repo: repo, key: key, delay: delay, log: log}
}

// load lee el blob persistido; nil si no hay o si el adaptador falla.
func (p *persister) load(ctx context.Context) []byte {
	if p.repo == nil {
		return nil
	}
	b, err := p.repo.Load(ctx, p.key)
	if err != nil {
		p.log.Warn().Err(err).Msg("no se pudo cargar el estado persistido")
		return nil
	}
	if len(b) == 0 {
		return nil
	}
	return b
}

func (p *persister) save(v any) {
	if p.repo == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		p.log.Error().Err(err).Msg("serializar estado")
		return
	}

	p.mu.Lock()
	if p.delay <= 0 || p.closed {
		p.mu.Unlock()
		p.writeMu.Lock()
		p.write(b)
		p.writeMu.Unlock()
		return
	}
	p.pending = b
	if p.timer == nil {
		p.timer = time.AfterFunc(p.delay, func() { _ = p.flush(context.Background()) })
	}
	p.mu.Unlock()
}

func (p *persister) flush(_ context.Context) error {
	if p.repo == nil {
		return nil
	}
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.mu.Lock()
	b := p.pending
	p.pending = nil
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.mu.Unlock()

	if b == nil {
		return nil
	}
	return p.write(b)
}

func (p *persister) close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return p.flush(ctx)
}

// write debe llamarse con writeMu tomado.
func (p *persister) write(b []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := p.repo.Save(ctx, p.key, b); err != nil {
		p.log.Error().Err(err).Int("bytes", len(b)).Msg("no se pudo persistir el estado")
		return fmt.Errorf("persistir %s: %w", p.key, err)
	}
	return nil
}
