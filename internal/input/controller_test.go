package input

import (
	"testing"
)

func TestNew_ShouldCreateControllerWithDefaultState(t *testing.T) {
	controller := New()

	if controller.Buttons() != 0 {
		t.Errorf("Expected buttons to be 0, got 0x%02X", controller.Buttons())
	}
	if controller.Read() != 0 {
		t.Error("Expected an unlatched controller to read 0")
	}
}

func TestSetButton_ShouldUpdateButtonState(t *testing.T) {
	tests := []struct {
		name     string
		button   Button
		expected uint8
	}{
		{"A", ButtonA, 0x80},
		{"B", ButtonB, 0x40},
		{"Select", ButtonSelect, 0x20},
		{"Start", ButtonStart, 0x10},
		{"Up", ButtonUp, 0x08},
		{"Down", ButtonDown, 0x04},
		{"Left", ButtonLeft, 0x02},
		{"Right", ButtonRight, 0x01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controller := New()

			controller.SetButton(tt.button, true)
			if controller.Buttons() != tt.expected {
				t.Errorf("Expected 0x%02X, got 0x%02X", tt.expected, controller.Buttons())
			}
			if !controller.IsPressed(tt.button) {
				t.Error("Expected button to be pressed")
			}

			controller.SetButton(tt.button, false)
			if controller.Buttons() != 0 {
				t.Errorf("Expected release to clear the bit, got 0x%02X", controller.Buttons())
			}
		})
	}
}

func TestRead_ShiftsMostSignificantBitFirst(t *testing.T) {
	controller := New()
	controller.SetButtons(0xA5) // A, Select, Down, Right

	controller.Latch()

	expected := []uint8{1, 0, 1, 0, 0, 1, 0, 1}
	for i, want := range expected {
		if got := controller.Read(); got != want {
			t.Errorf("Read %d: expected %d, got %d", i, want, got)
		}
	}
	for i := 0; i < 4; i++ {
		if got := controller.Read(); got != 0 {
			t.Errorf("Extended read %d: expected 0, got %d", i, got)
		}
	}
}

func TestRead_UsesLatchedSnapshot(t *testing.T) {
	controller := New()
	controller.SetButton(ButtonA, true)
	controller.Latch()

	controller.SetButton(ButtonA, false)
	controller.SetButton(ButtonB, true)

	if controller.Read() != 1 {
		t.Error("Expected A from the snapshot")
	}
	if controller.Read() != 0 {
		t.Error("Button pressed after the latch should not be visible")
	}
}

func TestPeek_DoesNotShift(t *testing.T) {
	controller := New()
	controller.SetButton(ButtonA, true)
	controller.Latch()

	for i := 0; i < 3; i++ {
		if controller.Peek() != 1 {
			t.Fatal("Expected peek to report A")
		}
	}
	if controller.Read() != 1 {
		t.Error("Read after peeks should still return A")
	}
}

func TestReset_ShouldClearAllState(t *testing.T) {
	controller := New()
	controller.SetButtons(0xFF)
	controller.Latch()

	controller.Reset()

	if controller.Buttons() != 0 || controller.Read() != 0 {
		t.Error("Expected reset to clear buttons and the shift register")
	}
}

func TestInputState_WriteLatchesBothPorts(t *testing.T) {
	is := NewInputState()
	is.Port(0).SetButton(ButtonA, true)
	is.Port(1).SetButton(ButtonB, true)

	is.Write(0x4016, 0x01)

	if is.Read(0x4016, false) != 1 {
		t.Error("Port 1: expected A")
	}
	if is.Read(0x4017, false) != 0 {
		t.Error("Port 2: A is not pressed")
	}
	if is.Read(0x4017, false) != 1 {
		t.Error("Port 2: expected B on the second read")
	}
}

func TestInputState_Write_InvalidAddress_ShouldBeIgnored(t *testing.T) {
	is := NewInputState()
	is.Port(0).SetButton(ButtonA, true)

	is.Write(0x4017, 0x01)

	if is.Read(0x4016, false) != 0 {
		t.Error("Writes to $4017 must not latch controllers")
	}
}

func TestInputState_Read_InvalidAddress_ShouldReturnZero(t *testing.T) {
	is := NewInputState()
	is.Port(0).SetButtons(0xFF)
	is.Write(0x4016, 0)

	if got := is.Read(0x4018, false); got != 0 {
		t.Errorf("Expected 0, got %d", got)
	}
	if got := is.Read(0x4016, true); got != 1 {
		t.Errorf("Expected peek of A, got %d", got)
	}
	if got := is.Read(0x4016, false); got != 1 {
		t.Errorf("Peek must not consume the bit, got %d", got)
	}
}

func TestInputState_Reset_ShouldResetBothControllers(t *testing.T) {
	is := NewInputState()
	is.Port(0).SetButtons(0xFF)
	is.Port(1).SetButtons(0xFF)

	is.Reset()

	if is.Controller1.Buttons() != 0 || is.Controller2.Buttons() != 0 {
		t.Error("Expected both controllers reset")
	}
}

func BenchmarkController_ReadSequence(b *testing.B) {
	controller := New()
	controller.SetButtons(0x5A)

	for i := 0; i < b.N; i++ {
		controller.Latch()
		for j := 0; j < 8; j++ {
			controller.Read()
		}
	}
}
