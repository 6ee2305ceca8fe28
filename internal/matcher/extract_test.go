package matcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lost-found/backend/internal/model"
	"lost-found/backend/pkg/llm"
)

func TestExtract_FallbackWhenUnavailable(t *testing.T) {
	post := newPost("p", model.DirectionLost, "蓝色水杯", strings.Repeat("杯", 300), "其他", "B区 食堂")

	x := NewExtractor(&scriptedGateway{available: false}, zap.NewNop()).Extract(context.Background(), post)
	assert.Equal(t, SourceFallback, x.Source)
	assert.Equal(t, CauseUnavailable, x.FallbackCause)
	assert.Equal(t, "蓝色水杯", x.ItemName)
	assert.Empty(t, x.Color)
	assert.Empty(t, x.Brand)
	assert.Equal(t, 200, len([]rune(x.Features)))
	assert.Equal(t, "B区 食堂", x.LocationDetail)
	assert.Equal(t, "2025-03-18 09:30:00", x.TimeInfo)
	assert.Equal(t, "蓝色水杯", x.Raw["item_name"])
}

func TestExtract_LLMFields(t *testing.T) {
	gw := &scriptedGateway{available: true, replies: []llm.Outcome{okText(
		`{"item_name": "校园卡", "color": "白色", "brand": "", "features": "有卡套", "location_detail": "图书馆三楼", "time_info": "周一上午", "extra": 3}`,
	)}}
	post := newPost("p", model.DirectionFound, "捡到校园卡", "图书馆三楼捡到", "证件", "C区 图书馆")

	x := NewExtractor(gw, zap.NewNop()).Extract(context.Background(), post)
	assert.Equal(t, SourceLLM, x.Source)
	assert.Equal(t, "校园卡", x.ItemName)
	assert.Equal(t, "白色", x.Color)
	assert.Equal(t, "图书馆三楼", x.LocationDetail)
	assert.Equal(t, "周一上午", x.TimeInfo)
	assert.Equal(t, float64(3), x.Raw["extra"])
	require.Len(t, gw.temps, 1)
	assert.InDelta(t, 0.1, gw.temps[0], 1e-12)
}

func TestExtract_EmptyParseFallsBack(t *testing.T) {
	gw := &scriptedGateway{available: true, replies: []llm.Outcome{okText("抱歉，无法识别")}}
	post := newPost("p", model.DirectionLost, "雨伞", "黑色长柄伞", "其他", "A区")

	x := NewExtractor(gw, zap.NewNop()).Extract(context.Background(), post)
	assert.Equal(t, SourceFallback, x.Source)
	assert.Equal(t, CauseUnparsable, x.FallbackCause)
	assert.Equal(t, "雨伞", x.ItemName)
}

func TestExtraction_Truncated(t *testing.T) {
	x := Extraction{
		ItemName:       strings.Repeat("名", 150),
		Color:          strings.Repeat("色", 80),
		Brand:          "Apple",
		Features:       strings.Repeat("特", 1000),
		LocationDetail: strings.Repeat("地", 300),
		TimeInfo:       strings.Repeat("时", 120),
	}.Truncated()

	assert.Len(t, []rune(x.ItemName), model.ItemNameMaxLen)
	assert.Len(t, []rune(x.Color), model.ColorMaxLen)
	assert.Equal(t, "Apple", x.Brand)
	assert.Len(t, []rune(x.Features), 1000)
	assert.Len(t, []rune(x.LocationDetail), model.LocationDetailMaxLen)
	assert.Len(t, []rune(x.TimeInfo), model.TimeInfoMaxLen)
}
