package brainatlas

import (
	"fmt"
	"strconv"
	"strings"
)

// Hemisphere is the hemisphere tag carried by every unionize row. Left is
// contralateral to the injection, right is ipsilateral, and both is the
// combined measurement.
type Hemisphere int

const (
	HemisphereLeft  Hemisphere = 1
	HemisphereRight Hemisphere = 2
	HemisphereBoth  Hemisphere = 3
)

// Hemispheres lists the tags in the order they are reported.
var Hemispheres = []Hemisphere{HemisphereLeft, HemisphereRight, HemisphereBoth}

func (h Hemisphere) String() string {
	switch h {
	case HemisphereLeft:
		return "left"
	case HemisphereRight:
		return "right"
	case HemisphereBoth:
		return "both"
	}

	return fmt.Sprintf("hemisphere(%d)", int(h))
}

func ParseHemisphere(name string) (Hemisphere, error) {
	for _, h := range Hemispheres {
		if h.String() == name {
			return h, nil
		}
	}

	return 0, fmt.Errorf("Hemisphere %q is not recognized. Valid hemispheres are left, right and both", name)
}

// MarshalCSV keeps the numeric tag in cached tables.
func (h Hemisphere) MarshalCSV() (string, error) {
	return strconv.Itoa(int(h)), nil
}

func (h *Hemisphere) UnmarshalCSV(value string) error {
	id, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("Hemisphere id %q is not an integer", value)
	}
	*h = Hemisphere(id)

	return nil
}
