package matcher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lost-found/backend/internal/model"
)

func TestComputeIDF_EmptyCorpus(t *testing.T) {
	idf := ComputeIDF(nil)
	assert.NotNil(t, idf)
	assert.Empty(t, idf)
}

func TestComputeIDF_TermInEveryDocument(t *testing.T) {
	docs := [][]string{{"钱包", "黑色"}, {"钱包"}, {"钱包", "钥匙"}}
	idf := ComputeIDF(docs)

	want := math.Log(3.0/4.0) + 1
	assert.InDelta(t, want, idf["钱包"], 1e-12)
	assert.Less(t, idf["钱包"], 1.0)
	assert.Greater(t, idf["钥匙"], idf["钱包"])
}

func TestComputeTF_EmptyDocument(t *testing.T) {
	assert.Empty(t, ComputeTF(nil))

	tf := ComputeTF([]string{"a", "b", "a", "c"})
	assert.InDelta(t, 0.5, tf["a"], 1e-12)
	assert.InDelta(t, 0.25, tf["c"], 1e-12)
}

func TestComputeTFIDF_UnknownTermDefaultsToOne(t *testing.T) {
	out := ComputeTFIDF(Vector{"新词": 0.5}, Vector{})
	assert.InDelta(t, 0.5, out["新词"], 1e-12)
}

func TestCosineSimilarity_Properties(t *testing.T) {
	a := Vector{"钱包": 0.4, "黑色": 0.2, "图书馆": 0.1}
	b := Vector{"钱包": 0.3, "红色": 0.5}

	assert.Equal(t, CosineSimilarity(a, b), CosineSimilarity(b, a))
	assert.Equal(t, 1.0, CosineSimilarity(a, a))
	assert.Equal(t, 1.0, CosineSimilarity(b, b))
	assert.Equal(t, 0.0, CosineSimilarity(Vector{}, b))
	assert.Equal(t, 0.0, CosineSimilarity(Vector{}, Vector{}))
}

func TestRetrieve_LengthAndOrdering(t *testing.T) {
	target := newPost("t", model.DirectionLost, "丢了黑色钱包", "在图书馆二楼丢的黑色皮质钱包", "钱包", "C区 图书馆")
	pool := []*model.Post{
		newPost("p1", model.DirectionFound, "捡到雨伞", "蓝色折叠伞", "其他", "A区 食堂"),
		newPost("p2", model.DirectionFound, "捡到黑色钱包", "图书馆二楼捡到黑色钱包", "钱包", "C区 图书馆"),
		newPost("p3", model.DirectionFound, "捡到校园卡", "校园卡一张", "证件", "E区 校医院"),
		newPost("p4", model.DirectionFound, "捡到钱包", "棕色钱包", "钱包", "B区 食堂"),
	}

	r := NewRetriever()
	for _, k := range []int{1, 2, 4, 10} {
		got := r.Retrieve(target, pool, k)
		assert.LessOrEqual(t, len(got), k)
		assert.LessOrEqual(t, len(got), len(pool))
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
		}
		for _, c := range got {
			assert.GreaterOrEqual(t, c.Score, 0.0)
			assert.LessOrEqual(t, c.Score, 1.0+1e-9)
		}
	}

	top := r.Retrieve(target, pool, 1)
	require.Len(t, top, 1)
	assert.Equal(t, "p2", top[0].Post.PostID)
}

func TestRetrieve_EmptyPool(t *testing.T) {
	target := newPost("t", model.DirectionLost, "钥匙", "一串钥匙", "钥匙", "A区 宿舍")
	assert.Empty(t, NewRetriever().Retrieve(target, nil, 10))
}

func TestRetrieve_TiesKeepInputOrder(t *testing.T) {
	target := newPost("t", model.DirectionLost, "耳机", "白色耳机", "数码产品", "D区 体育馆")
	pool := []*model.Post{
		newPost("a", model.DirectionFound, "雨伞", "雨伞", "其他", "F区"),
		newPost("b", model.DirectionFound, "雨伞", "雨伞", "其他", "F区"),
	}
	got := NewRetriever().Retrieve(target, pool, 10)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Post.PostID)
	assert.Equal(t, "b", got[1].Post.PostID)
}

// 同一输入反复计算必须逐位相同，否则并列候选会随机换位或被 top_k 截断
func TestRetrieve_DeterministicAcrossRuns(t *testing.T) {
	target := newPost("t", model.DirectionLost, "丢失黑色钱包", "图书馆二楼自习室丢失黑色皮质钱包，内有校园卡和身份证", "钱包", "C区 图书馆")
	pool := []*model.Post{
		newPost("a", model.DirectionFound, "捡到黑色钱包", "自习室捡到黑色皮质钱包，里面有校园卡", "钱包", "C区 图书馆"),
		newPost("b", model.DirectionFound, "捡到黑色钱包", "自习室捡到黑色皮质钱包，里面有校园卡", "钱包", "C区 图书馆"),
	}
	r := NewRetriever()

	first := r.Retrieve(target, pool, 2)
	require.Len(t, first, 2)
	assert.Equal(t, math.Float64bits(first[0].Score), math.Float64bits(first[1].Score))

	for i := 0; i < 200; i++ {
		got := r.Retrieve(target, pool, 2)
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].Post.PostID)
		assert.Equal(t, "b", got[1].Post.PostID)
		assert.Equal(t, math.Float64bits(first[0].Score), math.Float64bits(got[0].Score))
		assert.Equal(t, math.Float64bits(got[0].Score), math.Float64bits(got[1].Score))
	}

	// 与自身比较恰为 1
	self := r.Retrieve(target, []*model.Post{target}, 1)
	require.Len(t, self, 1)
	assert.Equal(t, 1.0, self[0].Score)
}

func TestPrefilterByCategory(t *testing.T) {
	target := newPost("t", model.DirectionLost, "钱包", "", "钱包", "")
	pool := []*model.Post{
		newPost("a", model.DirectionFound, "钱包", "", "钱包", ""),
		newPost("b", model.DirectionFound, "钥匙", "", "钥匙", ""),
	}

	assert.Len(t, PrefilterByCategory(target, pool, false), 2)

	strict := PrefilterByCategory(target, pool, true)
	require.Len(t, strict, 1)
	assert.Equal(t, "a", strict[0].PostID)
}
