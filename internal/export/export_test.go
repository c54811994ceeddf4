package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ast-dyn/apophis/events"
	"github.com/ast-dyn/apophis/forcemodel"
	"github.com/ast-dyn/apophis/internal/bodies"
	"github.com/ast-dyn/apophis/ring"
	"github.com/ast-dyn/apophis/taylor"
)

func testAsteroidState() forcemodel.State[ring.Real] {
	r := func(v float64) ring.Real { return ring.Real(v) }
	return forcemodel.State[ring.Real]{
		R:    forcemodel.Vec3[ring.Real]{r(1.1), r(0.05), r(-0.02)},
		V:    forcemodel.Vec3[ring.Real]{r(-0.002), r(0.015), r(0.0001)},
		Yark: r(0),
		Rad:  r(0),
	}
}

func testMassiveBodies() []forcemodel.BodyState {
	return []forcemodel.BodyState{
		{Body: bodies.Sun, Pos: [3]float64{0, 0, 0}, Vel: [3]float64{0, 0, 0}},
		{Body: bodies.Earth, Pos: [3]float64{1, 0, 0}, Vel: [3]float64{0, 0.0172, 0}},
	}
}

func testStep(t *testing.T, idx int, t0, dt float64) taylor.StepRecord {
	t.Helper()
	lifted, err := taylor.Step(taylor.Generic[ring.Real], testAsteroidState(), testMassiveBodies(), bodies.Sun.GM, 4)
	if err != nil {
		t.Fatal(err)
	}
	return taylor.StepRecord{StepIndex: idx, T0: t0, Dt: dt, State: lifted}
}

func TestToStepPieceCarriesOrderAndCoefficients(t *testing.T) {
	rec := testStep(t, 3, 2451545.0, 0.5)
	piece := ToStepPiece(rec)
	if piece.StepIndex != 3 || piece.T0 != 2451545.0 || piece.Dt != 0.5 {
		t.Fatalf("unexpected header fields: %+v", piece)
	}
	if len(piece.R[0]) != 5 {
		t.Fatalf("expected order-4 series to carry 5 coefficients, got %d", len(piece.R[0]))
	}
	if piece.R[0][0] != float64(rec.State.R[0].Coeff(0)) {
		t.Fatalf("constant term mismatch: %g vs %g", piece.R[0][0], float64(rec.State.R[0].Coeff(0)))
	}
}

func TestFileSinkRoundTripsThroughJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trajectory.ndjson")

	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		rec := testStep(t, i, 2451545.0+float64(i), 1.0)
		if err := sink.Record(rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var pieces []StepPiece
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var p StepPiece
		if err := json.Unmarshal(sc.Bytes(), &p); err != nil {
			t.Fatal(err)
		}
		pieces = append(pieces, p)
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}
	if len(pieces) != 3 {
		t.Fatalf("expected 3 streamed records, got %d", len(pieces))
	}
	for i, p := range pieces {
		if p.StepIndex != i {
			t.Fatalf("record %d has step index %d", i, p.StepIndex)
		}
	}
}

func TestEventLogWriterAppendsRecords(t *testing.T) {
	var buf bytes.Buffer
	w := NewEventLogWriter(&buf)

	d := events.Detection{
		Time:  2451600.25,
		State: testAsteroidState(),
		Value: 1e-12,
	}
	if err := w.Write(d); err != nil {
		t.Fatal(err)
	}

	var rec EventRecord
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Time != d.Time {
		t.Fatalf("expected time %g, got %g", d.Time, rec.Time)
	}
	if rec.R[0] != float64(d.State.R[0]) {
		t.Fatalf("expected R[0] %g, got %g", float64(d.State.R[0]), rec.R[0])
	}
}
