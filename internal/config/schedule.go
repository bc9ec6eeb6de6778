package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScheduleConfig 描述课表的固定结构：哪些天、哪些时间段、哪些时间段是课间休息。
// 进程启动时构造一次，之后以参数的形式传入每一个组件，不允许从全局状态中读取。
type ScheduleConfig struct {
	Days               []string `yaml:"days" json:"days"`
	Slots              []string `yaml:"slots" json:"slots"`
	BreakSlots         []string `yaml:"breakSlots" json:"breakSlots"`
	Separator          string   `yaml:"separator" json:"separator"`
	ContinuationMarker string   `yaml:"continuationMarker" json:"continuationMarker"`

	dayIndex  map[string]int
	slotIndex map[string]int
	breaks    map[string]bool
}

var defaultDays = []string{"MON", "TUE", "WED", "THU", "FRI", "SAT"}

var defaultSlots = []string{
	"8:30 to 9:25", "9:25 to 10:20", "10:20 to 10:30", "10:30 to 11:25",
	"11:25 to 12:20", "12:20 to 13:15", "13:15 to 14:10", "14:10 to 15:05",
	"15:05 to 15:10", "15:10 to 16:00", "16:00 to 16:50", "16:50 to 16:55",
	"16:55 to 17:45", "17:45 to 18:25",
}

// 午休 (12:20 to 13:15) 在部分班级里排了课，因此不算作休息时间段
var defaultBreakSlots = []string{"10:20 to 10:30", "15:05 to 15:10", "16:50 to 16:55"}

const (
	DefaultSeparator          = "---"
	DefaultContinuationMarker = "MERGED_CELL"
)

func DefaultSchedule() *ScheduleConfig {
	sc := &ScheduleConfig{
		Days:               slices.Clone(defaultDays),
		Slots:              slices.Clone(defaultSlots),
		BreakSlots:         slices.Clone(defaultBreakSlots),
		Separator:          DefaultSeparator,
		ContinuationMarker: DefaultContinuationMarker,
	}
	// 内置配置一定是合法的
	_ = sc.init()
	return sc
}

// LoadSchedule 从 YAML 文件中读取课表结构，path 为空时返回内置配置
func LoadSchedule(path string) (*ScheduleConfig, error) {
	if path == "" {
		return DefaultSchedule(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return ParseSchedule(data)
}

func ParseSchedule(data []byte) (*ScheduleConfig, error) {
	sc := &ScheduleConfig{}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("无法解析课表结构文件: %w", err)
	}

	if len(sc.Days) == 0 {
		sc.Days = slices.Clone(defaultDays)
	}
	if len(sc.Slots) == 0 {
		sc.Slots = slices.Clone(defaultSlots)
		if sc.BreakSlots == nil {
			sc.BreakSlots = slices.Clone(defaultBreakSlots)
		}
	}
	if sc.Separator == "" {
		sc.Separator = DefaultSeparator
	}
	if sc.ContinuationMarker == "" {
		sc.ContinuationMarker = DefaultContinuationMarker
	}

	if err := sc.init(); err != nil {
		return nil, err
	}
	return sc, nil
}

func (sc *ScheduleConfig) init() error {
	sc.dayIndex = make(map[string]int, len(sc.Days))
	for i, day := range sc.Days {
		day = strings.ToUpper(NormalizeLabel(day))
		if day == "" {
			return fmt.Errorf("第 %d 个日期为空", i+1)
		}
		if _, exists := sc.dayIndex[day]; exists {
			return fmt.Errorf("日期 %q 重复", day)
		}
		sc.Days[i] = day
		sc.dayIndex[day] = i
	}

	sc.slotIndex = make(map[string]int, len(sc.Slots))
	for i, slot := range sc.Slots {
		slot = NormalizeLabel(slot)
		if slot == "" {
			return fmt.Errorf("第 %d 个时间段为空", i+1)
		}
		if _, exists := sc.slotIndex[slotKey(slot)]; exists {
			return fmt.Errorf("时间段 %q 重复", slot)
		}
		sc.Slots[i] = slot
		sc.slotIndex[slotKey(slot)] = i
	}

	sc.breaks = make(map[string]bool, len(sc.BreakSlots))
	for i, slot := range sc.BreakSlots {
		j, exists := sc.slotIndex[slotKey(slot)]
		if !exists {
			return fmt.Errorf("休息时间段 %q 不在时间段列表中", slot)
		}
		sc.BreakSlots[i] = sc.Slots[j]
		sc.breaks[slotKey(slot)] = true
	}

	if len(sc.breaks) == len(sc.Slots) {
		return errors.New("所有时间段都是休息时间段")
	}
	if strings.TrimSpace(sc.Separator) == "" {
		return errors.New("分隔行不能为空")
	}

	return nil
}

// NormalizeLabel 去掉首尾空白并压缩中间的空白
func NormalizeLabel(label string) string {
	return strings.Join(strings.Fields(label), " ")
}

func slotKey(label string) string {
	return strings.ToLower(NormalizeLabel(label))
}

// DayIndex 查找日期标签的下标，日期不区分大小写
func (sc *ScheduleConfig) DayIndex(label string) (int, bool) {
	i, ok := sc.dayIndex[strings.ToUpper(NormalizeLabel(label))]
	return i, ok
}

func (sc *ScheduleConfig) IsDay(label string) bool {
	_, ok := sc.DayIndex(label)
	return ok
}

func (sc *ScheduleConfig) SlotIndex(label string) (int, bool) {
	i, ok := sc.slotIndex[slotKey(label)]
	return i, ok
}

func (sc *ScheduleConfig) IsBreak(slot string) bool {
	return sc.breaks[slotKey(slot)]
}

// IsBreakAt 按下标判断时间段是否为休息时间
func (sc *ScheduleConfig) IsBreakAt(i int) bool {
	if i < 0 || i >= len(sc.Slots) {
		return false
	}
	return sc.breaks[slotKey(sc.Slots[i])]
}
