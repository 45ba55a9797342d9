// Package dispatcher sends SMS alerts to the beekeeper through the modem channel.
package dispatcher
