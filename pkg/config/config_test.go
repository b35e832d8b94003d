package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/tauraamui/framegrab/pkg/config"
	"github.com/tauraamui/framegrab/pkg/configdef"
)

var _ = Describe("Config", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "framegrab-config")
		Expect(err).To(BeNil())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(dir)).To(Succeed())
	})

	Context("Resolving from an explicit file", func() {
		It("Should load YAML values over the defaults", func() {
			path := filepath.Join(dir, "framegrab.yaml")
			Expect(os.WriteFile(path, []byte("source: live\nlive:\n  channel: 3\n"), 0666)).To(Succeed())

			values, err := config.FileResolver(path).Resolve()
			Expect(err).To(BeNil())
			Expect(values.Source).To(Equal(configdef.SourceLive))
			Expect(values.Live.Channel).To(Equal(3))
			Expect(values.Live.Scale).To(Equal(configdef.DefaultScale))
		})

		It("Should fall back to defaults when the file does not exist", func() {
			values, err := config.FileResolver(filepath.Join(dir, "missing.json")).Resolve()
			Expect(err).To(BeNil())
			Expect(values).To(Equal(configdef.Default()))
		})

		It("Should reject a file which fails validation", func() {
			path := filepath.Join(dir, "framegrab.json")
			Expect(os.WriteFile(path, []byte(`{"decoder": "tiff"}`), 0666)).To(Succeed())

			_, err := config.FileResolver(path).Resolve()
			Expect(err).To(MatchError("validation failed: unknown decoder [tiff]"))
		})
	})

	Context("Resolving from the environment", func() {
		It("Should load the file named by FRAMEGRAB_CONFIG", func() {
			path := filepath.Join(dir, "env.json")
			Expect(os.WriteFile(path, []byte(`{"disk": {"count": 3}}`), 0666)).To(Succeed())
			os.Setenv("FRAMEGRAB_CONFIG", path)
			defer os.Unsetenv("FRAMEGRAB_CONFIG")

			values, err := config.FileResolver("").Resolve()
			Expect(err).To(BeNil())
			Expect(values.Disk.Count).To(Equal(3))
		})
	})

	Context("Creating the default file", func() {
		It("Should refuse to overwrite an existing config", func() {
			path := filepath.Join(dir, "created.json")
			os.Setenv("FRAMEGRAB_CONFIG", path)
			defer os.Unsetenv("FRAMEGRAB_CONFIG")

			created, err := config.DefaultCreator().Create()
			Expect(err).To(BeNil())
			Expect(created).To(Equal(path))

			_, err = config.DefaultCreator().Create()
			Expect(err).To(MatchError(configdef.ErrConfigAlreadyExists))
		})
	})
})
