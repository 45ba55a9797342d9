// Package position implements the hive-position monitor: it reads the hive
// position every period, appends it to the position log and raises a
// geofence-breach alert when the hive leaves its zone.
package position
