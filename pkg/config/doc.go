// Package config loads device descriptors from YAML files.
//
// A configuration file describes one or more devices to expose:
//
//	devices:
//	  - name: uio0
//	    description: sample DAQ board
//	    subclass: 42
//	    version: "1.0"
//	    author: Example Corp
//	    irq: 5
//	    regions:
//	      - slot: 0
//	        type: physical
//	        addr: 0x40000000
//	        len: 4096
//	        name: registers
//
// Region slots not listed stay holes. Parsed descriptors carry no
// driver hooks; callers install those before registration.
package config
