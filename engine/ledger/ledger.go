// Package ledger tracks a hero's active modifier entries and resource
// pools (Fate, Armor, Seals, Taint). Entries are plain data; the combat
// loop queries the ledger at each resolution point.
package ledger

import (
	"fmt"

	"github.com/nathoo/gauntlet/engine/rules"
	"github.com/nathoo/gauntlet/types"
)

// Resource names accepted by Drain.
const (
	ResourceFate  = "fate"
	ResourceArmor = "armor"
	ResourceSeals = "seals"
)

// Entry states. An entry only ever moves from active to expired.
const (
	StateActive  = "active"
	StateExpired = "expired"
)

// Entry is a registered modifier.
type Entry struct {
	ID       int
	Owner    string
	Source   string // card ID
	Scope    types.Scope
	Stat     types.Stat
	Amount   int
	Cap      int
	Until    []types.Condition
	OnExpire []types.Effect
	State    string
}

// Apply adjusts a value by the entry's amount.
func (e Entry) Apply(v int) int {
	return v + e.Amount
}

// Ledger holds one hero's entries and pools.
type Ledger struct {
	entries []Entry
	nextID  int

	fate    int
	fateCap int
	armor   int
	seals   int
	sealCap int
	taint   int
}

// New creates an empty ledger. A cap of 0 means uncapped.
func New(fateCap, sealCap, startingFate int) *Ledger {
	l := &Ledger{fateCap: fateCap, sealCap: sealCap}
	l.GainFate(startingFate)
	return l
}

// Register adds an entry. It returns false when the entry declares a cap
// and that many active entries from the same source and stat already exist.
func (l *Ledger) Register(e Entry) bool {
	if e.Cap > 0 {
		n := 0
		for _, x := range l.entries {
			if x.Source == e.Source && x.Stat == e.Stat {
				n++
			}
		}
		if n >= e.Cap {
			return false
		}
	}
	l.nextID++
	e.ID = l.nextID
	e.State = StateActive
	l.entries = append(l.entries, e)
	return true
}

// Sum returns the combined amount of every active entry for a stat.
func (l *Ledger) Sum(stat types.Stat) int {
	v := 0
	for _, e := range l.entries {
		if e.Stat == stat {
			v = e.Apply(v)
		}
	}
	return v
}

// Consume spends up to n units from entries of a stat, oldest first.
// Spent entries stay registered at zero until their scope closes, so their
// OnExpire effects still fire. Returns the units consumed.
func (l *Ledger) Consume(stat types.Stat, n int) int {
	used := 0
	for i := range l.entries {
		e := &l.entries[i]
		if used >= n {
			break
		}
		if e.Stat != stat || e.Amount <= 0 {
			continue
		}
		take := min(e.Amount, n-used)
		e.Amount -= take
		used += take
	}
	return used
}

// ResolveScopeEnd expires every entry of the scope and returns them so the
// caller can fire their OnExpire effects. Closing the combat scope also
// resets Armor.
func (l *Ledger) ResolveScopeEnd(scope types.Scope) []Entry {
	expired := l.expire(func(e Entry) bool { return e.Scope == scope })
	if scope == types.ScopeCombat {
		l.ResetArmor()
	}
	return expired
}

// ExpireWhen expires persistent entries whose Until conditions hold.
func (l *Ledger) ExpireWhen(s rules.Snapshot) []Entry {
	return l.expire(func(e Entry) bool {
		return e.Scope == types.ScopePersistent && len(e.Until) > 0 && rules.EvalAll(e.Until, s)
	})
}

func (l *Ledger) expire(match func(Entry) bool) []Entry {
	var expired []Entry
	kept := l.entries[:0]
	for _, e := range l.entries {
		if match(e) {
			e.State = StateExpired
			expired = append(expired, e)
			continue
		}
		kept = append(kept, e)
	}
	l.entries = kept
	return expired
}

// Active returns a copy of the active entries in registration order.
func (l *Ledger) Active() []Entry {
	return append([]Entry(nil), l.entries...)
}

// Fate returns the current Fate.
func (l *Ledger) Fate() int { return l.fate }

// Armor returns the current Armor.
func (l *Ledger) Armor() int { return l.armor }

// Seals returns the current Seals.
func (l *Ledger) Seals() int { return l.seals }

// Taint returns the accumulated Taint.
func (l *Ledger) Taint() int { return l.taint }

// GainFate adds Fate up to the cap and returns the amount gained.
func (l *Ledger) GainFate(n int) int {
	return addCapped(&l.fate, n, l.fateCap)
}

// SpendFate removes n Fate if the hero has it.
func (l *Ledger) SpendFate(n int) bool {
	if n > l.fate {
		return false
	}
	l.fate -= n
	return true
}

// AddArmor grants Armor.
func (l *Ledger) AddArmor(n int) {
	if n > 0 {
		l.armor += n
	}
}

// SpendArmor absorbs up to n with Armor and returns the amount absorbed.
func (l *Ledger) SpendArmor(n int) int {
	used := min(max(n, 0), l.armor)
	l.armor -= used
	return used
}

// ResetArmor drops all Armor.
func (l *Ledger) ResetArmor() {
	l.armor = 0
}

// AddSeals adds Seals up to the cap and returns the amount gained.
func (l *Ledger) AddSeals(n int) int {
	return addCapped(&l.seals, n, l.sealCap)
}

// AddTaint adds Taint after Seals absorb it one for one. Returns the
// Taint that got through.
func (l *Ledger) AddTaint(n int) int {
	if n <= 0 {
		return 0
	}
	absorbed := min(n, l.seals)
	l.seals -= absorbed
	l.taint += n - absorbed
	return n - absorbed
}

// Drain removes up to n of a resource and returns the amount removed.
func (l *Ledger) Drain(resource string, n int) int {
	var pool *int
	switch resource {
	case ResourceFate:
		pool = &l.fate
	case ResourceArmor:
		pool = &l.armor
	case ResourceSeals:
		pool = &l.seals
	default:
		panic(fmt.Sprintf("ledger: drain of unknown resource %q", resource))
	}
	taken := min(max(n, 0), *pool)
	*pool -= taken
	return taken
}

func addCapped(pool *int, n, limit int) int {
	if n <= 0 {
		return 0
	}
	before := *pool
	*pool += n
	if limit > 0 && *pool > limit {
		*pool = limit
	}
	return *pool - before
}
