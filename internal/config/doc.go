// Package config manages the user's ptool store, ~/.ptool by default. It
// seeds and reads config.yaml, whose top-level entries become template
// values, and locates the template repository checkout.
package config
