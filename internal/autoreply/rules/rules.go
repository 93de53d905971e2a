// Package rules loads the ordered keyword-to-reply table used by the static strategy.
package rules

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// Rule maps a keyword to a reply template.
type Rule struct {
	Keyword string `toml:"keyword"`
	Reply   string `toml:"reply"`
}

// Table is the structure of a TOML rules file.
// Rules are matched in file order.
type Table struct {
	GroupDefault  string `toml:"group_default,omitempty"`
	DirectDefault string `toml:"direct_default,omitempty"`
	Rules         []Rule `toml:"rule"`
}

const (
	defaultGroupReply  = "@{{sender}} 收到你的消息，我会认真处理的！"
	defaultDirectReply = "收到你的消息：{{message}}，我会尽快回复你的。"
)

// Default returns the built-in table.
func Default() *Table {
	return &Table{
		GroupDefault:  defaultGroupReply,
		DirectDefault: defaultDirectReply,
		Rules: []Rule{
			{Keyword: "你好", Reply: "你好 {{sender}}！很高兴收到你的消息 😊"},
			{Keyword: "再见", Reply: "再见 {{sender}}，期待下次聊天！👋"},
			{Keyword: "谢谢", Reply: "不客气 {{sender}}！很高兴能帮到你 😄"},
			{Keyword: "帮助", Reply: "我可以帮你处理一些问题，请告诉我你需要什么帮助？"},
			{Keyword: "时间", Reply: "当前时间是：{{time}}"},
			{Keyword: "天气", Reply: "抱歉，我无法获取实时天气信息，建议你查看天气APP或网站。"},
		},
	}
}

// LoadTable loads a rules file. Missing defaults are filled from Default.
func LoadTable(filePath string) (*Table, error) {
	var table Table
	if _, err := toml.DecodeFile(filePath, &table); err != nil {
		return nil, fmt.Errorf("error decoding rules file: %w", err)
	}
	if err := table.normalize(); err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", filePath, err)
	}
	return &table, nil
}

// Load returns the table at filePath, or the built-in table when filePath is empty.
func Load(filePath string) (*Table, error) {
	if filePath == "" {
		return Default(), nil
	}
	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("rules file: %w", err)
	}
	return LoadTable(filePath)
}

// Encode writes the table in TOML.
func (t *Table) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(t)
}

func (t *Table) normalize() error {
	if t.GroupDefault == "" {
		t.GroupDefault = defaultGroupReply
	}
	if t.DirectDefault == "" {
		t.DirectDefault = defaultDirectReply
	}
	for i, r := range t.Rules {
		if r.Keyword == "" {
			return fmt.Errorf("rule %d has an empty keyword", i+1)
		}
	}
	return nil
}
