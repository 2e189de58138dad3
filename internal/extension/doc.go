// Package extension loads a template's optional _ptool.hcl file and lets it
// register additional filters into a rendering context.
//
// The file is declarative HCL. Its entry point is a register block:
//
//	register {
//	  filter "cmake_target" {
//	    params = ["name"]
//	    result = upper(replace(name, "-", "_"))
//	  }
//	}
//
// Result expressions are evaluated by package expr, so extensions have the
// same function table as manifest filters and cannot run code.
package extension
