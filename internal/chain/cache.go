package chain

import (
	"container/list"
	"sync"

	"github.com/contactkeval/option-analytics/internal/calc"
)

// ivKey identifies one implied-vol solve. Inputs are rounded to four
// decimals so near-identical quotes hit the same entry.
type ivKey struct {
	isCall bool
	price  float64
	spot   float64
	strike float64
	years  float64
}

func newIVKey(isCall bool, price, spot, strike, years float64) ivKey {
	return ivKey{
		isCall: isCall,
		price:  calc.Round4(price),
		spot:   calc.Round4(spot),
		strike: calc.Round4(strike),
		years:  calc.Round4(years),
	}
}

// ivCache is a bounded LRU cache of solved implied volatilities. A
// chain for one underlying repeats the same spot and expiry across
// many strikes, and the bid/mid/ask solves share inputs, so hit rates
// are high within a single request.
//
// The cache is owned by a Calculator instance, not package-global, so
// concurrent requests for different tickers never contend on it.
type ivCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[ivKey]*list.Element
	order    *list.List
}

type ivEntry struct {
	key ivKey
	vol float64
}

func newIVCache(capacity int) *ivCache {
	if capacity <= 0 {
		capacity = 128
	}
	return &ivCache{
		capacity: capacity,
		entries:  make(map[ivKey]*list.Element, capacity),
		order:    list.New(),
	}
}

func (c *ivCache) get(k ivKey) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[k]
	if !ok {
		return 0, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*ivEntry).vol, true
}

func (c *ivCache) put(k ivKey, vol float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[k]; ok {
		el.Value.(*ivEntry).vol = vol
		c.order.MoveToFront(el)
		return
	}
	c.entries[k] = c.order.PushFront(&ivEntry{key: k, vol: vol})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*ivEntry).key)
	}
}

func (c *ivCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
