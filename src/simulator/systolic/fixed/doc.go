// Package fixed provides the integer lane types used by the systolic array
// model: a lane precision with wrap or saturate overflow, and packed vectors of
// such lanes.
package fixed
