package draft

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func gateFor(t *testing.T, gates []Gate, step Step) Gate {
	t.Helper()
	for _, g := range gates {
		if g.Step == step {
			return g
		}
	}
	t.Fatalf("no gate for step %q", step)
	return Gate{}
}

func TestEvaluateGatesFreshDraft(t *testing.T) {
	d := New(uuid.New(), testDefaults())
	gates := EvaluateGates(d)

	client := gateFor(t, gates, StepClient)
	if !client.Unlocked || client.Completed {
		t.Errorf("client gate = %+v, want unlocked, incomplete", client)
	}
	for _, step := range []Step{StepOrder, StepServices, StepPayment, StepComments, StepComplete} {
		if g := gateFor(t, gates, step); g.Unlocked {
			t.Errorf("%s unlocked on a fresh draft", step)
		}
	}
	products := gateFor(t, gates, StepProducts)
	if products.Unlocked || !products.Completed {
		t.Errorf("products gate = %+v, want locked, completed", products)
	}
}

func TestEvaluateGatesOrderUnlock(t *testing.T) {
	tests := []struct {
		name    string
		setting int
		number  string
		want    bool
	}{
		{"no setting chosen", 0, "", false},
		{"client phone", 1, "", true},
		{"no notifications", 3, "", true},
		{"new number too short", 2, "123", false},
		{"new number long enough", 2, "12345", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(uuid.New(), testDefaults())
			d.SelectClient(ClientRef{ID: "c1", Name: "Anna"})
			d.NotificationSetting = tt.setting
			d.NotificationNumber = tt.number

			g := gateFor(t, EvaluateGates(d), StepOrder)
			if g.Unlocked != tt.want {
				t.Errorf("order unlocked = %v, want %v", g.Unlocked, tt.want)
			}
		})
	}
}

func TestEvaluateGatesOrderRequiresClient(t *testing.T) {
	d := New(uuid.New(), testDefaults())
	d.NotificationSetting = 1

	if g := gateFor(t, EvaluateGates(d), StepOrder); g.Unlocked {
		t.Error("order unlocked without a client")
	}
}

func TestEvaluateGatesServicesAndTail(t *testing.T) {
	d := New(uuid.New(), testDefaults())
	d.SelectClient(ClientRef{ID: "c1", Name: "Anna"})
	d.NotificationSetting = 1

	gates := EvaluateGates(d)
	if g := gateFor(t, gates, StepServices); !g.Unlocked || g.Completed {
		t.Errorf("services gate = %+v, want unlocked, incomplete", g)
	}
	if g := gateFor(t, gates, StepPayment); g.Unlocked {
		t.Error("payment unlocked before any service committed")
	}

	d.StartServiceEdit(CatalogPick{ID: "cat1", Name: "Coat", Price: decimal.NewFromInt(500)})
	if err := d.CommitService(); err != nil {
		t.Fatal(err)
	}

	gates = EvaluateGates(d)
	if g := gateFor(t, gates, StepServices); !g.Completed {
		t.Error("services gate incomplete with a committed service")
	}
	for _, step := range []Step{StepPayment, StepComments, StepComplete} {
		if g := gateFor(t, gates, step); !g.Unlocked {
			t.Errorf("%s locked with a committed service", step)
		}
	}
	if g := gateFor(t, gates, StepComplete); g.Completed {
		t.Error("complete step reported completed")
	}
}

func TestEvaluateGatesServicesNeedReceiver(t *testing.T) {
	d := New(uuid.New(), Defaults{Now: testDefaults().Now})
	d.SelectClient(ClientRef{ID: "c1", Name: "Anna"})
	d.NotificationSetting = 1

	if g := gateFor(t, EvaluateGates(d), StepServices); g.Unlocked {
		t.Error("services unlocked without a receiver")
	}
	if g := gateFor(t, EvaluateGates(d), StepOrder); g.Completed {
		t.Error("order completed without a receiver")
	}

	d.ReceiverID = "user_receiver"
	if g := gateFor(t, EvaluateGates(d), StepOrder); !g.Completed {
		t.Error("order incomplete with a receiver set")
	}
}

func TestEvaluateGatesOrderCompletedWhileLocked(t *testing.T) {
	d := New(uuid.New(), testDefaults())

	g := gateFor(t, EvaluateGates(d), StepOrder)
	if g.Unlocked {
		t.Error("order unlocked without a client")
	}
	if !g.Completed {
		t.Error("order incomplete with a receiver set")
	}
}

func TestEvaluateGatesCommentsComplete(t *testing.T) {
	d := New(uuid.New(), testDefaults())
	d.SelectClient(ClientRef{ID: "c1", Name: "Anna"})
	d.NotificationSetting = 1
	d.StartServiceEdit(CatalogPick{ID: "cat1", Name: "Coat", Price: decimal.NewFromInt(500)})
	if err := d.CommitService(); err != nil {
		t.Fatal(err)
	}

	if g := gateFor(t, EvaluateGates(d), StepComments); g.Completed {
		t.Error("comments completed with no comments")
	}
	d.AddComment(Comment{UserID: "u1", Text: "note"})
	if g := gateFor(t, EvaluateGates(d), StepComments); !g.Completed {
		t.Error("comments incomplete after adding one")
	}
}
