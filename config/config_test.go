package config_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmtrans/codegen"
	"github.com/sarchlab/vmtrans/config"
)

func setenv(name, value string) {
	Expect(os.Setenv(name, value)).To(Succeed())
	DeferCleanup(os.Unsetenv, name)
}

var _ = Describe("Config", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "vmtrans-config")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)
	})

	writeConfig := func(content string) string {
		path := filepath.Join(dir, "vmtrans.yaml")
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	It("should provide usable defaults", func() {
		c := config.Default()

		Expect(c.Entry).To(Equal("Sys.init"))
		Expect(c.Comments).To(BeTrue())
		Expect(c.Verify.MaxSteps).To(Equal(100000))
		Expect(c.Verify.StackBase).To(Equal(256))
		Expect(c.Validate()).To(Succeed())
	})

	It("should load a YAML file over the defaults", func() {
		path := writeConfig(`
entry: Main.main
comments: false
verify:
  max_steps: 500
`)

		c, err := config.Load(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(c.Entry).To(Equal("Main.main"))
		Expect(c.Comments).To(BeFalse())
		Expect(c.Verify.MaxSteps).To(Equal(500))
		Expect(c.Verify.StackBase).To(Equal(256))
		Expect(c.LogLevel).To(Equal("info"))
	})

	It("should reject malformed YAML", func() {
		path := writeConfig("entry: [unterminated\n")

		_, err := config.Load(path)
		Expect(err).To(MatchError(config.ErrInvalid))
	})

	It("should reject unusable values", func() {
		path := writeConfig("log_level: loud\n")

		_, err := config.Load(path)
		Expect(err).To(MatchError(config.ErrInvalid))
	})

	It("should fail on a missing file", func() {
		_, err := config.Load(filepath.Join(dir, "missing.yaml"))
		Expect(err).To(HaveOccurred())
	})

	It("should apply environment overrides", func() {
		setenv(config.EnvEntry, "Main.start")
		setenv(config.EnvModule, "Main")
		setenv(config.EnvComments, "false")
		setenv(config.EnvLogLevel, "debug")
		setenv(config.EnvMaxSteps, "42")

		c := config.Default()
		Expect(c.ApplyEnv()).To(Succeed())

		Expect(c.Entry).To(Equal("Main.start"))
		Expect(c.Module).To(Equal("Main"))
		Expect(c.Comments).To(BeFalse())
		Expect(c.LogLevel).To(Equal("debug"))
		Expect(c.Verify.MaxSteps).To(Equal(42))
	})

	It("should keep values whose variable is unset", func() {
		c := config.Default()
		Expect(c.ApplyEnv()).To(Succeed())
		Expect(c).To(Equal(config.Default()))
	})

	DescribeTable("log levels",
		func(name string, want slog.Level) {
			c := config.Default()
			c.LogLevel = name

			level, err := c.Level()
			Expect(err).NotTo(HaveOccurred())
			Expect(level).To(Equal(want))
		},
		Entry("trace", "trace", codegen.LevelTrace),
		Entry("debug", "DEBUG", slog.LevelDebug),
		Entry("info", "info", slog.LevelInfo),
		Entry("warn", "warn", slog.LevelWarn),
		Entry("error", "error", slog.LevelError),
	)

	It("should build a JSON handler", func() {
		c := config.Default()
		c.LogFormat = "json"

		var buf bytes.Buffer
		slog.New(c.Handler(&buf)).Info("hello", "Lines", 3)

		Expect(buf.String()).To(ContainSubstring(`"msg":"hello"`))
		Expect(buf.String()).To(ContainSubstring(`"Lines":3`))
	})
})
