package runid

import (
	"fmt"
	"math/rand"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// SuffixLength is the length of the random part of an ID.
const SuffixLength = 8

var adjectives = []string{
	"amber", "bold", "brave", "bright", "brisk", "calm", "clean", "clever", "crisp",
	"eager", "even", "fair", "fast", "fierce", "fine", "firm", "gentle", "glad",
	"golden", "grand", "happy", "keen", "kind", "lively", "loyal", "lucky", "mellow",
	"mighty", "neat", "nimble", "noble", "plain", "proud", "quick", "quiet", "rapid",
	"ready", "sharp", "shiny", "silent", "sleek", "smart", "smooth", "solid", "stable",
	"steady", "stout", "strong", "sunny", "swift", "tidy", "true", "vivid", "warm",
	"wise", "witty", "zesty",
}

// parts of the test bench
var components = []string{
	"ammeter", "amplifier", "anode", "antenna", "battery", "breaker", "bridge",
	"busbar", "cable", "capacitor", "cathode", "choke", "circuit", "clamp", "coil",
	"comparator", "conductor", "converter", "crystal", "diode", "divider", "dynamo",
	"electrode", "filter", "fuse", "galvanometer", "generator", "ground", "inductor",
	"inverter", "junction", "lamp", "latch", "magnet", "meter", "motor", "multimeter",
	"ohmmeter", "oscillator", "plug", "probe", "rectifier", "regulator", "relay",
	"resistor", "rheostat", "sensor", "shunt", "socket", "solenoid", "switch",
	"terminal", "thermistor", "thyristor", "transformer", "transistor", "triode",
	"tube", "varistor", "voltmeter", "wire", "zener",
}

var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

// New generates a readable run identifier like "steady_capacitor_V1StGXR8".
func New() (string, error) {
	adjective := adjectives[rng.Intn(len(adjectives))]
	component := components[rng.Intn(len(components))]

	suffix, err := gonanoid.Generate(alphabet, SuffixLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate nanoid: %w", err)
	}

	return fmt.Sprintf("%s_%s_%s", adjective, component, suffix), nil
}
