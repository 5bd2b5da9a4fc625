package main

import (
	"os"

	"github.com/magefile/mage/sh"
	"github.com/pkg/errors"
)

// pdftotextImage is the default image of the container extraction backend.
const pdftotextImage = "minidocks/poppler:latest"

// PullImage fetches the pdftotext image used when extraction.backend is
// "container". Set CONTAINER_RUNTIME=podman to use podman.
func PullImage() error {
	runtime := os.Getenv("CONTAINER_RUNTIME")
	if runtime == "" {
		runtime = "docker"
	}
	if err := sh.RunV(runtime, "pull", pdftotextImage); err != nil {
		return errors.Wrapf(err, "%s pull", runtime)
	}
	return nil
}
