package history

import (
	"fmt"
	"math/big"
)

// RememberSetGen records a change of the generation count from oldGen to
// newGen. The host has already updated its starting generation; oldStartGen
// and oldSave are the values it replaced.
//
// When the count moves from past the starting generation back to or before
// it, the next run would overwrite the starting pattern, so the host is given
// a fresh starting resource and the record keeps the old one. The new side
// of the record is then completed by the next RememberGenStart. If no fresh
// resource can be created the host is restored to oldGen and nothing is
// recorded.
func (m *Manager) RememberSetGen(oldGen, newGen, oldStartGen *big.Int, oldSave bool) error {
	m.SavePendingChanges()

	oldStart := m.host.Start().Clone()
	oldStart.Gen = new(big.Int).Set(oldStartGen)
	oldFile := m.host.FileState()
	oldFile.SaveStart = oldSave

	// the record owns a reference to the old resource
	m.store.Retain(oldStart.Resource)

	if oldGen.Cmp(oldStartGen) > 0 && newGen.Cmp(oldStartGen) <= 0 {
		h, err := m.store.Reserve()
		if err != nil {
			// Without a fresh resource the next run would overwrite the one
			// older records restore from, so the host goes back to oldGen.
			m.releaseHandle(oldStart.Resource)
			m.host.SetGenCount(oldGen)
			m.host.SetStart(oldStart)
			m.host.SetFileState(oldFile)
			m.warn(fmt.Sprintf("Failed to create starting snapshot: %v", err))
			return fmt.Errorf("set generation: %w", err)
		}
		start := m.host.Start()
		start.Resource = h
		start.File = string(h)
		m.host.SetStart(start)
		fs := m.host.FileState()
		fs.CurrFile = ""
		m.host.SetFileState(fs)
		// the host holds its own reference now
		m.releaseHandle(h)
	}

	newStart := m.host.Start().Clone()
	m.store.Retain(newStart.Resource)

	c := &SetGeneration{
		OldGen:   new(big.Int).Set(oldGen),
		NewGen:   new(big.Int).Set(newGen),
		OldStart: oldStart,
		NewStart: newStart,
		OldFile:  oldFile,
		NewFile:  m.host.FileState(),
	}
	if c.OldStart.Resource != c.NewStart.Resource {
		m.fixSetGen = true
	}
	m.push(c)
	return nil
}
