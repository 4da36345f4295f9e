package trace

import "testing"

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelStages})

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	if summary.TotalRecords != 0 {
		t.Errorf("expected 0 records, got %d", summary.TotalRecords)
	}
	if summary.UniqueItems != 0 {
		t.Errorf("expected 0 unique items, got %d", summary.UniqueItems)
	}
	if len(summary.Stages) != 0 {
		t.Error("expected no stage summaries")
	}
}

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)
	if summary.TotalRecords != 0 || len(summary.Stages) != 0 {
		t.Errorf("expected zero summary, got %+v", summary)
	}
}

func TestSummarize_PopulatedTrace_PerStageStatistics(t *testing.T) {
	// GIVEN records for two items across two stages
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelStages})
	st.RecordStage(StageRecord{Item: 1, Stage: "corte", Queued: 0, Started: 0, Finished: 4})
	st.RecordStage(StageRecord{Item: 2, Stage: "corte", Queued: 1, Started: 4, Finished: 8})
	st.RecordStage(StageRecord{Item: 1, Stage: "costura", Queued: 4, Started: 4, Finished: 9})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts match
	if summary.TotalRecords != 3 {
		t.Errorf("expected 3 records, got %d", summary.TotalRecords)
	}
	if summary.UniqueItems != 2 {
		t.Errorf("expected 2 unique items, got %d", summary.UniqueItems)
	}
	if len(summary.Stages) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(summary.Stages))
	}

	// THEN stages are sorted by name and carry mean/max wait
	corte := summary.Stages[0]
	if corte.Stage != "corte" || corte.Count != 2 {
		t.Errorf("unexpected first stage %+v", corte)
	}
	if corte.MeanWait != 1.5 {
		t.Errorf("expected mean wait 1.5, got %v", corte.MeanWait)
	}
	if corte.MaxWait != 3 {
		t.Errorf("expected max wait 3, got %v", corte.MaxWait)
	}
	if corte.MeanService != 4 {
		t.Errorf("expected mean service 4, got %v", corte.MeanService)
	}
	if corte.P95Wait < corte.MeanWait || corte.P95Wait > corte.MaxWait {
		t.Errorf("expected p95 wait within [mean, max], got %v", corte.P95Wait)
	}
	if summary.Stages[1].P95Wait != 0 {
		t.Errorf("expected costura p95 wait 0, got %v", summary.Stages[1].P95Wait)
	}
	if summary.Stages[1].Stage != "costura" {
		t.Errorf("expected costura second, got %s", summary.Stages[1].Stage)
	}
}
