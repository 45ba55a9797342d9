// Package bme280 reads temperature, humidity and pressure from a Bosch BME280
// on the I2C bus, or from a simulated sensor.
package bme280

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"

	"github.com/melaina/hive-monitor/internal/config"
	"github.com/melaina/hive-monitor/internal/logger"
)

// Sample is one raw measurement.
type Sample struct {
	// Temperature in °C.
	Temperature float64
	// Humidity is the relative humidity in %.
	Humidity float64
	// Pressure in Pa.
	Pressure float64
}

// Sensor yields one sample per call.
type Sensor interface {
	Sense() (Sample, error)
	Close() error
}

// Device is a BME280 driven through periph.io.
type Device struct {
	bus i2c.BusCloser
	dev *bmxx80.Dev
}

// OpenDevice initialises the host drivers and the sensor at addr on the named bus.
func OpenDevice(busName string, addr uint16) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host drivers: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open I2C bus %q: %w", busName, err)
	}

	dev, err := bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
	if err != nil {
		_ = bus.Close()

		return nil, fmt.Errorf("init BME280 at 0x%02X: %w", addr, err)
	}

	return &Device{
		bus: bus,
		dev: dev,
	}, nil
}

// Sense performs one measurement.
func (d *Device) Sense() (Sample, error) {
	var env physic.Env
	if err := d.dev.Sense(&env); err != nil {
		return Sample{}, fmt.Errorf("sense: %w", err)
	}

	return Sample{
		Temperature: env.Temperature.Celsius(),
		// Humidity is fixed point at 1e-5 %RH.
		Humidity: float64(env.Humidity) / float64(physic.PercentRH),
		// Pressure is stored in nPa.
		Pressure: float64(env.Pressure) / float64(physic.Pascal),
	}, nil
}

// Close halts the sensor and releases the bus.
func (d *Device) Close() error {
	return errors.Join(d.dev.Halt(), d.bus.Close())
}

// Open selects the sensor for the process lifetime. Hardware mode returns the
// initialisation error; auto mode falls back to Simulated.
//
//nolint:ireturn // The factory exists to hide which variant was picked.
func Open(ctx context.Context, cfg config.WeatherConfig) (Sensor, error) {
	if cfg.Mode == config.ModeSimulated {
		logger.Info(ctx, "BME280 simulation requested, I2C bus not probed")
		return NewSimulated(nil), nil
	}

	dev, err := OpenDevice(cfg.I2CBus, cfg.I2CAddress)
	if err != nil {
		if cfg.Mode == config.ModeHardware {
			return nil, err
		}

		logger.WarnKV(ctx, "BME280 not detected, switching to simulation", "address", fmt.Sprintf("0x%02X", cfg.I2CAddress), "error", err)

		return NewSimulated(nil), nil
	}

	logger.InfoKV(ctx, "BME280 initialised", "bus", cfg.I2CBus, "address", fmt.Sprintf("0x%02X", cfg.I2CAddress))

	return dev, nil
}

// Simulated produces plausible tropical readings.
type Simulated struct {
	rand *rand.Rand
}

// NewSimulated creates a simulated sensor; a nil generator is seeded randomly.
func NewSimulated(r *rand.Rand) *Simulated {
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // Simulated weather is not security sensitive.
	}

	return &Simulated{
		rand: r,
	}
}

// Sense returns 20-36 °C, 20-90 % and 101325 ± 1500 Pa.
func (s *Simulated) Sense() (Sample, error) {
	return Sample{
		Temperature: 28 + (s.rand.Float64()-0.5)*16,
		Humidity:    55 + (s.rand.Float64()-0.5)*70,
		Pressure:    101325 + (s.rand.Float64()-0.5)*3000,
	}, nil
}

// Close is a no-op.
func (s *Simulated) Close() error {
	return nil
}
