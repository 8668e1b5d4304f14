package alloc

// Stats holds per-owner allocator counters.
type Stats struct {
	AllocCalls       int // Total Allocate() calls
	AllocExact       int // Served by Quipu.AllocExact
	AllocBump        int // Carved from the bump region
	AllocBestFit     int // Served by Quipu.AllocBestFit
	AllocFragment    int // One-cell requests served from a fragment
	AllocFailed      int // Returned ErrNoSpace
	CellsAllocated   int // Cells handed out, headers included
	FreeCalls        int // Objects reclaimed, sweeps included
	CellsFreed       int // Cells returned
	CoalesceForward  int // Merges with the following run
	CoalesceBackward int // Merges with the preceding run
	BumpFolds        int // Runs folded back into the bump region
	HeadRotations    int // Larger freed blocks that became the Quipu head
	HeadPromotions   int // Chained blocks promoted to head when it was taken
	FinalizeErrors   int // Finalizer failures (reclamation still proceeds)
	MajorSweeps      int
	MinorSweeps      int
}

// SweepStats summarises one sweep of an owner.
type SweepStats struct {
	Reclaimed      int // Objects reclaimed
	CellsReclaimed int // Cells reclaimed, headers included
	Survivors      int // Objects left live
}

// Add accumulates o into s.
func (s *SweepStats) Add(o SweepStats) {
	s.Reclaimed += o.Reclaimed
	s.CellsReclaimed += o.CellsReclaimed
	s.Survivors += o.Survivors
}
