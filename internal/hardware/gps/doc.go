// Package gps provides position sources for the hive position monitor.
//
// NMEASource reads a GPS receiver over a serial channel; SimulatedSource
// perturbs a base coordinate with bounded uniform noise. Open picks one of
// them once, at startup, according to the configured mode.
package gps
