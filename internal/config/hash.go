package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

const checksumFilename = ".checksums"

// ErrNoChecksums is returned when no .checksums manifest exists next to the
// config file. Callers treat this as a warning, not a failure.
var ErrNoChecksums = errors.New("no .checksums manifest found")

// ChecksumManifest maps config file basenames to BLAKE3 hex digests.
type ChecksumManifest struct {
	Hashes map[string]string `yaml:"hashes"`
}

// ComputeBlake3Hash computes the BLAKE3 hash of a file.
func ComputeBlake3Hash(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

// GenerateChecksums hashes the config file and writes the .checksums manifest
// beside it. Running this authorizes the current config state ("config lock").
func GenerateChecksums(configPath string) (string, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	hash, err := ComputeBlake3Hash(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", absPath, err)
	}

	manifest := ChecksumManifest{
		Hashes: map[string]string{
			filepath.Base(absPath): hash,
		},
	}

	data, err := yaml.Marshal(&manifest)
	if err != nil {
		return "", fmt.Errorf("failed to marshal checksums: %w", err)
	}

	manifestPath := filepath.Join(filepath.Dir(absPath), checksumFilename)
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", manifestPath, err)
	}

	return manifestPath, nil
}

// VerifyChecksums checks the config file against the .checksums manifest.
// Returns ErrNoChecksums when no manifest exists, and a hard error when the
// file is listed but its hash does not match.
func VerifyChecksums(configPath string) error {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	manifestPath := filepath.Join(filepath.Dir(absPath), checksumFilename)
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNoChecksums
		}
		return fmt.Errorf("failed to read %s: %w", manifestPath, err)
	}

	var manifest ChecksumManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("failed to parse %s: %w", manifestPath, err)
	}

	name := filepath.Base(absPath)
	expected, ok := manifest.Hashes[name]
	if !ok {
		return fmt.Errorf("file %s not in %s manifest; run 'tidyherd config lock'", name, checksumFilename)
	}

	actual, err := ComputeBlake3Hash(absPath)
	if err != nil {
		return fmt.Errorf("failed to hash %s: %w", absPath, err)
	}
	if actual != expected {
		return fmt.Errorf("hash mismatch for %s: expected %s, got %s\n"+
			"Config was modified since last 'tidyherd config lock'", name, expected, actual)
	}

	return nil
}
