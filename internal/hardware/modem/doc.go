// Package modem sends SMS alerts through a cellular modem driven by AT
// commands, or through a simulated channel when no modem is present.
//
// Delivery is never confirmed: the modem's replies are not parsed, so a nil
// error from ATModem only means every write reached the serial channel.
package modem
