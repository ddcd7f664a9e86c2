package domain

import (
	"fmt"
	"strings"
)

// SensorKind identifies one measurement channel of the host sensor subsystem.
type SensorKind int

// The fixed sensor catalog. Adding a kind requires extending sensorKinds
// below, which holds both its name and its arity.
const (
	KindAcceleration SensorKind = iota + 1
	KindAngularRate
	KindLinearAcceleration
	KindGravity
	KindMagneticField
	KindRotationVector
	KindStepCounter
	KindHeartRate
)

type sensorKindInfo struct {
	name  string
	alias string
	arity int
}

var sensorKinds = map[SensorKind]sensorKindInfo{
	KindAcceleration:       {name: "ACCELEROMETER", alias: "acceleration", arity: 3},
	KindAngularRate:        {name: "GYROSCOPE", alias: "angular-rate", arity: 3},
	KindLinearAcceleration: {name: "LINEAR_ACCELERATION", alias: "linear-acceleration", arity: 3},
	KindGravity:            {name: "GRAVITY", alias: "gravity", arity: 3},
	KindMagneticField:      {name: "MAGNETIC_FIELD", alias: "magnetic-field", arity: 3},
	KindRotationVector:     {name: "ROTATION_VECTOR", alias: "rotation-vector", arity: 3},
	KindStepCounter:        {name: "STEP_COUNTER", alias: "step-counter", arity: 1},
	KindHeartRate:          {name: "HEART_RATE", alias: "heart-rate", arity: 1},
}

// catalog is the order in which kinds are requested from the host.
var catalog = []SensorKind{
	KindAcceleration,
	KindAngularRate,
	KindLinearAcceleration,
	KindGravity,
	KindMagneticField,
	KindRotationVector,
	KindStepCounter,
	KindHeartRate,
}

// Catalog returns the ordered list of sensor kinds the collector requests.
func Catalog() []SensorKind {
	return append([]SensorKind(nil), catalog...)
}

// String returns the name written to the sensor_type column.
func (k SensorKind) String() string {
	if info, ok := sensorKinds[k]; ok {
		return info.name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(k))
}

// Alias returns the lowercase name used in configuration.
func (k SensorKind) Alias() string {
	return sensorKinds[k].alias
}

// Arity is the number of values a reading of this kind carries:
// 1 for scalar sensors, 3 for vector sensors, 0 for unknown kinds.
func (k SensorKind) Arity() int {
	return sensorKinds[k].arity
}

// IsValid reports whether k belongs to the catalog.
func (k SensorKind) IsValid() bool {
	_, ok := sensorKinds[k]
	return ok
}

// ParseSensorKind accepts either the column name ("HEART_RATE") or the
// configuration alias ("heart-rate"), case-insensitively.
func ParseSensorKind(value string) (SensorKind, error) {
	value = strings.TrimSpace(value)
	for _, kind := range catalog {
		info := sensorKinds[kind]
		if strings.EqualFold(value, info.name) || strings.EqualFold(value, info.alias) {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown sensor kind %q", ErrValidation, value)
}
