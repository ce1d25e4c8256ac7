package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/gauntlet/engine"
	"github.com/nathoo/gauntlet/engine/deck"
	"github.com/nathoo/gauntlet/types"
)

func TestLoad_MinimalCatalog(t *testing.T) {
	defs, err := Load("testdata/minimal", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if defs.Game.Title != "Minimal Catalog" {
		t.Errorf("Title = %q", defs.Game.Title)
	}
	if defs.Campaign.Hero != "squire" {
		t.Errorf("campaign hero = %q, want the only hero", defs.Campaign.Hero)
	}
	hero := defs.Heroes["squire"]
	if len(hero.Deck) != 5 || hero.Deck[4] != "strike" {
		t.Errorf("Copies did not expand: %v", hero.Deck)
	}
	if hero.Name != "squire" {
		t.Errorf("hero name should default to its ID, got %q", hero.Name)
	}

	strike := defs.Cards["strike"]
	if len(strike.Effects) != 1 || strike.Effects[0].Kind != types.EffectDamage ||
		strike.Effects[0].Amount != 1 || strike.Effects[0].DamageType != DefaultDamageType {
		t.Errorf("attack card without effects should deal 1 physical: %+v", strike.Effects)
	}
	if !defs.Cards["cleave"].AoE {
		t.Error("cleave should be AoE")
	}

	enc := defs.Encounters["rats"]
	if enc.Tier != types.TierBasic || enc.Count != 2 {
		t.Errorf("encounter = %+v", enc)
	}
	if defs.Rules.HandCap != 7 || len(defs.Rules.ExchangeDraws) != 4 {
		t.Errorf("rules should default when no Rules{} block: %+v", defs.Rules)
	}
}

func TestLoad_MixedLuaAndYAML(t *testing.T) {
	defs, err := Load("testdata/full", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Rules overrides, others default.
	r := defs.Rules
	if r.HandCap != 6 || r.CritDoubleChance != 0.25 || r.Insertion != types.InsertShuffle {
		t.Errorf("rules = %+v", r)
	}
	if len(r.ExchangeDraws) != 2 || r.FateCap != 10 {
		t.Errorf("rules = %+v", r)
	}

	focus := defs.Cards["focus"]
	if focus.Rarity != types.RarityUncommon || focus.Cost != 1 || focus.Priority != 5 {
		t.Errorf("focus = %+v", focus)
	}
	mod := focus.Effects[0].Modifier
	if mod == nil || mod.Stat != types.StatFace || mod.Scope != types.ScopeCombat || mod.Cap != 2 {
		t.Fatalf("focus modifier = %+v", mod)
	}
	if len(mod.When) != 1 || !mod.When[0].Negate || mod.When[0].Inner.Type != "hp_below" || mod.When[0].Inner.Value != 3 {
		t.Errorf("focus when = %+v", mod.When)
	}

	hellfire := defs.Cards["hellfire"]
	if !hellfire.Pierce || hellfire.Slot != types.SlotRanged {
		t.Errorf("hellfire = %+v", hellfire)
	}
	if hellfire.Effects[0].DamageType != "fire" || hellfire.Effects[0].Amount != 2 {
		t.Errorf("hellfire damage = %+v", hellfire.Effects[0])
	}
	bleed := hellfire.Effects[1].Modifier
	if bleed.Scope != types.ScopePersistent || len(bleed.Until) != 1 || len(bleed.OnExpire) != 1 {
		t.Errorf("hellfire bleed = %+v", bleed)
	}

	harpy := defs.Monsters["harpy"]
	if harpy.Kind != types.MonsterRanged || harpy.Vulnerability != "fire" {
		t.Errorf("harpy = %+v", harpy)
	}
	if len(harpy.Bands) != 4 || harpy.Bands[3].Effects[0].Resource != "fate" {
		t.Errorf("harpy bands = %+v", harpy.Bands)
	}
	if len(harpy.Handlers) != 1 || harpy.Handlers[0].EventType != types.EventHeroDamaged {
		t.Errorf("harpy handlers = %+v", harpy.Handlers)
	}
	if defs.Encounters["harpy_queen"].Count != 1 {
		t.Error("encounter count should default to 1")
	}
	if defs.Campaign.BasicCount != 1 || defs.Campaign.EliteCount != 1 || defs.Campaign.BonusDrafts[0] != 1 {
		t.Errorf("campaign = %+v", defs.Campaign)
	}
	if defs.Heroes["hercules"].Plate != 1 {
		t.Error("hercules plate not loaded")
	}
}

func TestLoad_YAMLOnly(t *testing.T) {
	defs, err := Load("testdata/yaml", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if defs.Rules.FateCap != 8 {
		t.Errorf("FateCap = %d", defs.Rules.FateCap)
	}
	volley := defs.Cards["volley"]
	if len(volley.Effects) != 2 || volley.Effects[0].DamageType != "piercing" {
		t.Errorf("volley = %+v", volley.Effects)
	}
	if defs.Monsters["slime"].Resistance != "piercing" || defs.Monsters["slime"].Armor != 1 {
		t.Errorf("slime = %+v", defs.Monsters["slime"])
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{"testdata/nonexistent", "reading content directory"},
		{"testdata/sandbox", "executing game.lua"},
		{"testdata/unknown_field", "decoding catalog.yaml"},
		{"testdata/duplicate", "duplicate card"},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.dir), func(t *testing.T) {
			_, err := Load(tt.dir, nil)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_BandGapIsValidationError(t *testing.T) {
	_, err := Load("testdata/bad_bands", nil)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	assertContains(t, ve.Errors, "do not partition")
}

func TestLoad_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(dir, nil)
	if err == nil || !strings.Contains(err.Error(), "no .lua or .yaml files") {
		t.Errorf("got %v", err)
	}
}

func TestLoad_SingularBlockTwice(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("game.lua", `Game { title = "One" }`)
	write("extra.yaml", "game:\n  title: Two\n")
	_, err := Load(dir, nil)
	if err == nil || !strings.Contains(err.Error(), "Game defined more than once") {
		t.Errorf("got %v", err)
	}
}

func TestSortedLuaFiles(t *testing.T) {
	got := sortedLuaFiles([]string{"monsters.lua", "game.lua", "cards.lua"})
	want := []string{"game.lua", "cards.lua", "monsters.lua"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSandbox_RandomRemoved(t *testing.T) {
	dir := t.TempDir()
	body := "Game { title = \"Dice\" }\nlocal n = math.random(6)\n"
	if err := os.WriteFile(filepath.Join(dir, "game.lua"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir, nil); err == nil || !strings.Contains(err.Error(), "executing game.lua") {
		t.Errorf("math.random should be unavailable, got %v", err)
	}
}

func assertContains(t *testing.T, list []string, substr string) {
	t.Helper()
	for _, s := range list {
		if strings.Contains(s, substr) {
			return
		}
	}
	t.Errorf("expected an entry containing %q in %v", substr, list)
}

func TestLoad_BundledContent(t *testing.T) {
	defs, err := Load("../content", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if defs.Game.Title != "Labours of the Gauntlet" {
		t.Errorf("Title = %q", defs.Game.Title)
	}
	for _, id := range []string{"hercules", "merlin", "musashi"} {
		h, ok := defs.Heroes[id]
		if !ok {
			t.Fatalf("hero %s missing", id)
		}
		if len(h.Deck) != 12 {
			t.Errorf("%s deck has %d cards, want 12", id, len(h.Deck))
		}
		for _, up := range h.Upgrades {
			if defs.Cards[up].Rarity == types.RarityBasic {
				t.Errorf("%s upgrade pool holds basic card %s", id, up)
			}
		}
	}
	camp := defs.Campaign
	if camp.Hero != "hercules" || camp.BasicCount != 3 || camp.EliteCount != 3 {
		t.Errorf("campaign = %+v", camp)
	}
	for _, m := range defs.Monsters {
		if len(m.Bands) != 4 {
			t.Errorf("monster %s has %d bands", m.ID, len(m.Bands))
		}
	}
}

func TestBundledContent_DraftRates(t *testing.T) {
	defs, err := Load("../content", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cards, err := defs.CardList(defs.Heroes["hercules"].Upgrades)
	if err != nil {
		t.Fatal(err)
	}
	perRarity := map[types.Rarity]int{}
	seen := map[string]bool{}
	for _, c := range cards {
		if seen[c.ID] {
			t.Errorf("upgrade %s listed twice", c.ID)
		}
		seen[c.ID] = true
		perRarity[c.Rarity]++
	}
	if perRarity[types.RarityCommon] != perRarity[types.RarityUncommon] || perRarity[types.RarityUncommon] != perRarity[types.RarityRare] {
		t.Fatalf("pool is not balanced across rarities: %v", perRarity)
	}

	pool := deck.NewPool(cards)
	rng := engine.NewRNG(1)
	counts := map[types.Rarity]int{}
	const trials = 60000
	for range trials {
		idx := pool.Sample(1, rng)[0]
		counts[cards[idx].Rarity]++
	}
	want := map[types.Rarity]float64{types.RarityCommon: 0.5, types.RarityUncommon: 1.0 / 3, types.RarityRare: 1.0 / 6}
	for r, w := range want {
		got := float64(counts[r]) / trials
		if got < w-0.02 || got > w+0.02 {
			t.Errorf("rarity %d drawn at %.3f, want %.3f", r, got, w)
		}
	}
}
