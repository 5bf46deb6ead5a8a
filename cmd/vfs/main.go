// Command vfs opens (or formats) a file-backed virtual filesystem and
// drops into an interactive shell on it.
//
//	vfs [-b<128|256|512|1024>] [-f<7|8|9|10>] FILESYSTEM
//
// The flags only matter when FILESYSTEM does not exist yet; an existing
// store is attached with the parameters recorded in its superblock.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	minivfs "github.com/minivfs/go-minivfs"
	"github.com/minivfs/go-minivfs/filesystem/minifat"
	"github.com/minivfs/go-minivfs/shell"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if os.Getenv("VFS_DEBUG") != "" {
		log.SetLevel(logrus.DebugLevel)
	}

	var (
		blockSize int
		fatType   int
	)

	cmd := &cobra.Command{
		Use:           "vfs [-b<128|256|512|1024>] [-f<7|8|9|10>] FILESYSTEM",
		Short:         "interactive shell over a virtual filesystem stored in a single file",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			if _, err := minifat.Size(blockSize, fatType); err != nil {
				return err
			}
			if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
				size, _ := minifat.Size(blockSize, fatType)
				log.Infof("formatting virtual file-system (%d bytes) ... please wait", size)
			}

			fs, created, err := minivfs.OpenOrFormat(path, blockSize, fatType)
			if err != nil {
				return err
			}
			defer fs.Close()
			log.Debugf("attached %s: block size %d, fat type %d, %d blocks, %d free, created=%v",
				path, fs.BlockSize(), fs.FATType(), fs.TotalBlocks(), fs.FreeBlocks(), created)

			return shell.New(fs, os.Stdin, os.Stdout, log).Run()
		},
	}
	cmd.Flags().IntVarP(&blockSize, "block-size", "b", minifat.DefaultBlockSize, "block size for a new filesystem")
	cmd.Flags().IntVarP(&fatType, "fat-type", "f", minifat.DefaultFATType, "FAT type for a new filesystem (the FAT holds 2^type entries)")

	if err := cmd.Execute(); err != nil {
		log.Errorf("vfs: %v", err)
		os.Exit(1)
	}
}
