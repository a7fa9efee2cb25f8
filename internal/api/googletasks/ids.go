package googletasks

import "sync"

// idMap assigns local integer ids to Google's string ids. Ids are handed
// out in first-seen order, increase strictly and are never reused.
type idMap struct {
	mu       sync.Mutex
	next     int64
	byLocal  map[int64]string
	byRemote map[string]int64
}

func newIDMap() *idMap {
	return &idMap{
		next:     1,
		byLocal:  make(map[int64]string),
		byRemote: make(map[string]int64),
	}
}

// local returns the id for remote, assigning a new one if needed.
func (m *idMap) local(remote string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byRemote[remote]; ok {
		return id
	}
	id := m.next
	m.next++
	m.byRemote[remote] = id
	m.byLocal[id] = remote
	return id
}

// remote looks up the Google id for a local id.
func (m *idMap) remote(local int64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byLocal[local]
	return id, ok
}

// forget drops the mapping; the local id is not handed out again.
func (m *idMap) forget(local int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if remote, ok := m.byLocal[local]; ok {
		delete(m.byRemote, remote)
		delete(m.byLocal, local)
	}
}
