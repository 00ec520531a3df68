package core

import (
	"reflect"
	"testing"
)

// opLog interleaves register writes and sleeps in call order
type opLog struct {
	ops []string
}

type loggingRegs struct {
	*SimRegisters
	log *opLog
}

func (r loggingRegs) Write32(offset uint32, value uint32) {
	r.SimRegisters.Write32(offset, value)
	r.log.ops = append(r.log.ops, RegisterName(offset)+"="+hex32(value))
}

type loggingSleeper struct {
	log    *opLog
	millis []uint32
}

func (s *loggingSleeper) SleepMillis(ms uint32) {
	s.millis = append(s.millis, ms)
	s.log.ops = append(s.log.ops, "sleep "+utoa(ms))
}

func runBlink(t *testing.T) (*SimRegisters, *loggingSleeper, *opLog, int) {
	t.Helper()
	log := &opLog{}
	sim := NewSimRegisters()
	sleeper := &loggingSleeper{log: log}
	status := Blink(loggingRegs{SimRegisters: sim, log: log}, sleeper)
	return sim, sleeper, log, status
}

func TestBlinkFunctionSelectWrittenOnceFirst(t *testing.T) {
	sim, _, _, _ := runBlink(t)

	writes := sim.Writes()
	if len(writes) == 0 {
		t.Fatal("no register writes recorded")
	}
	if writes[0].Offset != GPFSEL1 || writes[0].Value != 0b1<<18 {
		t.Errorf("first write = %s %s, expected GPFSEL1 0x00040000",
			RegisterName(writes[0].Offset), hex32(writes[0].Value))
	}

	fsel := sim.WritesTo(GPFSEL1)
	if len(fsel) != 1 {
		t.Errorf("GPFSEL1 written %d times, expected 1", len(fsel))
	}
	if sim.Function(LEDPin) != FuncOutput {
		t.Errorf("pin %d function = %s, expected output", LEDPin, sim.Function(LEDPin))
	}
}

func TestBlinkSetClearPairs(t *testing.T) {
	sim, _, log, status := runBlink(t)

	if status != 0 {
		t.Errorf("Blink returned %d, expected 0", status)
	}

	sets := sim.WritesTo(GPSET0)
	clears := sim.WritesTo(GPCLR0)
	if len(sets) != BlinkCycles || len(clears) != BlinkCycles {
		t.Fatalf("got %d set and %d clear writes, expected %d of each", len(sets), len(clears), BlinkCycles)
	}
	for i := range sets {
		if sets[i] != 0x1<<16 || clears[i] != 0x1<<16 {
			t.Fatalf("cycle %d: set=%s clear=%s, expected 0x00010000", i, hex32(sets[i]), hex32(clears[i]))
		}
	}

	// fsel, then (set, sleep, clear, sleep) per cycle
	expectedLen := 1 + 4*BlinkCycles
	if len(log.ops) != expectedLen {
		t.Fatalf("recorded %d operations, expected %d", len(log.ops), expectedLen)
	}
	cycle := []string{"GPSET0=0x00010000", "sleep 500", "GPCLR0=0x00010000", "sleep 500"}
	for i := 0; i < BlinkCycles; i++ {
		got := log.ops[1+4*i : 5+4*i]
		if !reflect.DeepEqual(got, cycle) {
			t.Fatalf("cycle %d = %v, expected %v", i, got, cycle)
		}
	}

	if sim.Level(LEDPin) {
		t.Error("pin left high after the last cycle")
	}
}

func TestBlinkSleepsHalfPeriod(t *testing.T) {
	_, sleeper, _, _ := runBlink(t)

	if len(sleeper.millis) != 2*BlinkCycles {
		t.Fatalf("slept %d times, expected %d", len(sleeper.millis), 2*BlinkCycles)
	}
	for i, ms := range sleeper.millis {
		if ms != BlinkHalfPeriodMillis {
			t.Fatalf("sleep %d was %d ms, expected %d", i, ms, BlinkHalfPeriodMillis)
		}
	}
}

func TestBlinkIdempotent(t *testing.T) {
	first, _, _, _ := runBlink(t)
	second, _, _, _ := runBlink(t)

	if !reflect.DeepEqual(first.Writes(), second.Writes()) {
		t.Error("two runs on fresh register files produced different write sequences")
	}
	if len(first.Writes()) != 1+2*BlinkCycles {
		t.Errorf("run wrote %d registers, expected %d", len(first.Writes()), 1+2*BlinkCycles)
	}
}

func TestKmainUsesRegisteredFile(t *testing.T) {
	sim := NewSimRegisters()
	SetRegisterFile(sim)
	sleeper := &loggingSleeper{log: &opLog{}}
	bootDelay = sleeper
	defer func() {
		SetRegisterFile(nil)
		bootDelay = SpinDelay{}
	}()

	if status := Kmain(); status != 0 {
		t.Errorf("Kmain returned %d, expected 0", status)
	}
	if len(sim.WritesTo(GPSET0)) != BlinkCycles {
		t.Errorf("registered file saw %d set writes, expected %d", len(sim.WritesTo(GPSET0)), BlinkCycles)
	}
	if len(sleeper.millis) != 2*BlinkCycles {
		t.Errorf("boot delay slept %d times, expected %d", len(sleeper.millis), 2*BlinkCycles)
	}
}

func TestBlinkDebugOutput(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	SetDebugEnabled(true)
	defer func() {
		SetDebugEnabled(false)
		SetDebugWriter(func(string) {})
	}()

	Blink(NewSimRegisters(), SpinDelay{Spin: func(uint64) {}})

	expected := []string{
		"[BLINK] fsel1=0x00040000 mask=0x00010000",
		"[BLINK] done cycles=600",
	}
	if !reflect.DeepEqual(lines, expected) {
		t.Errorf("debug output = %v, expected %v", lines, expected)
	}
}
