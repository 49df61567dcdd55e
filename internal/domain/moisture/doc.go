// Package moisture holds the pure soil-moisture domain: calibration points,
// a single sensor reading, and the mapping from raw ADC codes to a 0-100
// percentage. Nothing here touches hardware or the clock.
package moisture
