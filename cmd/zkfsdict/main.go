package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/zkfs-io/zkfs/pipeline"
)

func main() {
	samples := flag.String("samples", "", "directory of sample payloads to train on")
	out := flag.String("out", "dictionary.bin", "path to write the serialized dictionary")
	flag.Parse()

	if *samples == "" {
		log.Fatal("-samples is required")
	}

	var payloads [][]byte
	var names []string
	err := filepath.Walk(*samples, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		payloads = append(payloads, data)
		names = append(names, path)
		return nil
	})
	if err != nil {
		log.Fatalf("failed to read samples: %v", err)
	}
	if len(payloads) == 0 {
		log.Fatalf("no sample files under %s", *samples)
	}

	dict := pipeline.TrainDictionary(payloads)
	fmt.Printf("Trained on %d samples: %d substitution strings\n", len(payloads), len(dict.Strings()))

	for i, data := range payloads {
		compressed, err := dict.Compress(data)
		if err != nil {
			log.Fatalf("failed to compress %s: %v", names[i], err)
		}
		ratio := float64(len(compressed)) / float64(len(data))
		fmt.Printf("  %s: %d -> %d bytes (%.2fx)\n", names[i], len(data), len(compressed), ratio)
	}

	if err := os.WriteFile(*out, dict.Serialize(), 0o644); err != nil {
		log.Fatalf("failed to write dictionary: %v", err)
	}
	fmt.Printf("Wrote dictionary to %s\n", *out)
}
