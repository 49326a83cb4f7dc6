// Package factory instantiates pluggable modules, such as metrics sinks,
// from configuration entries of the form
//
//	sinks:
//	  - type: influx
//	    conf:
//	      url: http://localhost:8086
//	      bucket: ctr
//
// A Registry maps each type to a Factory, and Decode maps the conf block
// onto the factory's settings struct using its json tags.
package factory
