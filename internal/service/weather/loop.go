package weather

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/melaina/hive-monitor/internal/domain/hive"
	"github.com/melaina/hive-monitor/internal/hardware/bme280"
	"github.com/melaina/hive-monitor/internal/logger"
	"github.com/melaina/hive-monitor/internal/repository/logfile"
	"github.com/melaina/hive-monitor/internal/telemetry"
)

const (
	bannerWidth = 60
	reportWidth = 50
	reportTime  = "02/01/2006 15:04:05"
)

// loop holds the state of one weather logging session.
type loop struct {
	sensor bme280.Sensor
	log    logfile.WeatherRepository
	sink   telemetry.Sink
	limits hive.WeatherThresholds
	out    io.Writer
	now    func() time.Time

	// count is the number of attempted readings, failed ones included.
	count int
}

// run reads immediately, then once per interval, until ctx is canceled.
func (l *loop) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		l.tick(ctx)

		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return
		case <-ticker.C:
		}
	}
}

// tick performs one reading. Every failure is reported and skipped.
func (l *loop) tick(ctx context.Context) {
	l.count++

	logger.DebugKV(ctx, "Reading weather sensor", "reading", l.count)

	sample, err := l.sensor.Sense()
	if err != nil {
		logger.WarnKV(ctx, "Weather sensor read failed", "reading", l.count, "error", err)
		_, _ = fmt.Fprintln(l.out, "Reading failed, retrying on next tick...")

		return
	}

	reading := hive.NewWeatherReading(sample.Temperature, sample.Humidity, sample.Pressure, l.now())

	l.report(reading)

	if err = l.log.Append(ctx, reading); err != nil {
		logger.WarnKV(ctx, "Failed to append weather log", "error", err)
	}

	if err = l.sink.PublishWeather(ctx, reading, l.count); err != nil {
		logger.DebugKV(ctx, "Weather reading not published", "error", err)
	}

	for _, alert := range l.limits.Evaluate(reading) {
		_, _ = fmt.Fprintf(l.out, "\n%s\n   -> %s\n", alert.Message, alert.Advice)
		logger.WarnKV(ctx, "Weather threshold crossed", "kind", alert.Kind,
			"temperature", reading.Temperature, "humidity", reading.Humidity)

		if err = l.sink.PublishAlert(ctx, alert); err != nil {
			logger.WarnKV(ctx, "Weather alert not published", "error", err)
		}
	}
}

// report prints one reading as a framed block.
func (l *loop) report(r hive.WeatherReading) {
	rule := strings.Repeat("=", reportWidth)

	_, _ = fmt.Fprintf(l.out, "\n%s\nWEATHER READING - MELAINA apiary\n%s\n", rule, rule)
	_, _ = fmt.Fprintf(l.out, "Date/Time    : %s\n", r.Timestamp.Format(reportTime))
	_, _ = fmt.Fprintf(l.out, "Temperature  : %.1f°C\n", r.Temperature)
	_, _ = fmt.Fprintf(l.out, "Humidity     : %.1f%%\n", r.Humidity)
	_, _ = fmt.Fprintf(l.out, "Pressure     : %.2f hPa\n", r.Pressure)
	_, _ = fmt.Fprintln(l.out, rule)
}

func printBanner(out io.Writer) {
	blank := "║" + strings.Repeat(" ", bannerWidth) + "║"

	_, _ = fmt.Fprintln(out, "╔"+strings.Repeat("═", bannerWidth)+"╗")
	_, _ = fmt.Fprintln(out, blank)
	_, _ = fmt.Fprintln(out, "║"+center("MELAINA SYSTEM - APIARY WEATHER STATION", bannerWidth)+"║")
	_, _ = fmt.Fprintln(out, blank)
	_, _ = fmt.Fprintln(out, "║"+center("Smart hive monitoring", bannerWidth)+"║")
	_, _ = fmt.Fprintln(out, blank)
	_, _ = fmt.Fprintln(out, "╚"+strings.Repeat("═", bannerWidth)+"╝")
}

// center pads s on both sides to width runes, the extra space going right.
func center(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}

	left := (width - n) / 2

	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}
