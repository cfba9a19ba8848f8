package main

import "strings"

// flagSlice collects a flag that may be passed more than once, or once with
// comma-separated values.
type flagSlice []string

func (f *flagSlice) String() string {
	return strings.Join(*f, ",")
}

func (f *flagSlice) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			*f = append(*f, v)
		}
	}
	return nil
}
