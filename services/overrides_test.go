package services

import "testing"

func TestOverrideSet_SetAndEffective(t *testing.T) {
	o := NewOverrideSet()

	o.Set("s1", "mechanical", "sp1", OverrideDesign, floatPtr(4200))

	if got := o.Effective("s1", "mechanical", "sp1", OverrideDesign, 5000); got != 4200 {
		t.Errorf("Effective = %v, want override 4200", got)
	}
	// The other kind falls through to the calculated value.
	if got := o.Effective("s1", "mechanical", "sp1", OverrideConstruction, 1000); got != 1000 {
		t.Errorf("Effective construction = %v, want calculated 1000", got)
	}
	// A different cell is unaffected.
	if got := o.Effective("s1", "mechanical", "sp2", OverrideDesign, 5000); got != 5000 {
		t.Errorf("Effective other space = %v, want calculated 5000", got)
	}
}

func TestOverrideSet_ClearFieldRemovesEmptyRecord(t *testing.T) {
	o := NewOverrideSet()

	o.Set("s1", "mechanical", "sp1", OverrideDesign, floatPtr(4200))
	o.Set("s1", "mechanical", "sp1", OverrideConstruction, floatPtr(900))

	o.Set("s1", "mechanical", "sp1", OverrideDesign, nil)
	rec := o.Get("s1", "mechanical", "sp1")
	if rec == nil {
		t.Fatal("record should survive while construction field is set")
	}
	if rec.DesignFee != nil {
		t.Error("design field should be cleared")
	}

	o.Set("s1", "mechanical", "sp1", OverrideConstruction, nil)
	if o.Get("s1", "mechanical", "sp1") != nil {
		t.Error("record should be removed once both fields are clear")
	}
}

func TestOverrideSet_ClearOnMissingRecordIsNoOp(t *testing.T) {
	o := NewOverrideSet()
	o.Set("s1", "mechanical", "sp1", OverrideDesign, nil)
	if o.Len() != 0 {
		t.Error("clearing a missing record must not create one")
	}
}

func TestOverrideSet_Reset(t *testing.T) {
	o := NewOverrideSet()
	o.Set("s1", "mechanical", "sp1", OverrideDesign, floatPtr(4200))
	o.Set("s1", "mechanical", "sp1", OverrideConstruction, floatPtr(900))

	o.Reset("s1", "mechanical", "sp1")

	if o.Get("s1", "mechanical", "sp1") != nil {
		t.Error("reset should delete the record entirely")
	}
	if got := o.Effective("s1", "mechanical", "sp1", OverrideDesign, 5000); got != 5000 {
		t.Errorf("Effective after reset = %v, want calculated 5000", got)
	}
}

func TestOverrideSet_Cascades(t *testing.T) {
	o := NewOverrideSet()
	o.Set("s1", "mechanical", "sp1", OverrideDesign, floatPtr(1))
	o.Set("s1", "plumbing", "sp2", OverrideDesign, floatPtr(2))
	o.Set("s2", "mechanical", "sp3", OverrideDesign, floatPtr(3))

	o.DeleteSpace("sp1")
	if o.Get("s1", "mechanical", "sp1") != nil {
		t.Error("space cascade failed")
	}
	if o.Len() != 2 {
		t.Errorf("Len = %d, want 2", o.Len())
	}

	o.DeleteStructure("s1")
	if o.Get("s1", "plumbing", "sp2") != nil {
		t.Error("structure cascade failed")
	}
	if o.Get("s2", "mechanical", "sp3") == nil {
		t.Error("unrelated structure's override must survive")
	}
}
