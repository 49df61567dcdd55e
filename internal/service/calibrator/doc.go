// Package calibrator samples the soil probe to find the raw codes of dry and
// wet soil. Run it once with the probe in air or dry soil and once with the
// probe in water, then store the means as dry_raw and wet_raw.
package calibrator
