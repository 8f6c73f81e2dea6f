package rearrange_test

import (
	"reflect"
	"testing"

	"github.com/actorpus/SCPUAS/program"
	"github.com/actorpus/SCPUAS/rearrange"
)

func TestStartComesFirst(t *testing.T) {
	prog := program.New()
	prog.Ensure("helper")
	prog.Ensure(".lib.util")
	prog.Ensure("start")
	prog.Ensure("start~.HALT")

	rearrange.Reorder(prog)

	want := []string{"start", "helper", "start~.HALT", "lib.util"}
	if !reflect.DeepEqual(prog.Order, want) {
		t.Errorf("got %v, want %v", prog.Order, want)
	}
	if !prog.Has("lib.util") {
		t.Error("expected dotted root to be re-keyed with its leading dot stripped")
	}
	if prog.Has(".lib.util") {
		t.Error("expected the original dotted key to no longer be present")
	}
}

func TestNoStartLabel(t *testing.T) {
	prog := program.New()
	prog.Ensure("helper")
	prog.Ensure(".lib.util")

	rearrange.Reorder(prog)

	want := []string{"helper", "lib.util"}
	if !reflect.DeepEqual(prog.Order, want) {
		t.Errorf("got %v, want %v", prog.Order, want)
	}
}

func TestReorderPreservesRootInstructions(t *testing.T) {
	prog := program.New()
	prog.Append(".lib.util", &program.Instruction{Mnemonic: "ret"})

	rearrange.Reorder(prog)

	if len(prog.Roots["lib.util"]) != 1 {
		t.Fatalf("expected re-keyed root to retain its instruction list, got %v", prog.Roots["lib.util"])
	}
}
