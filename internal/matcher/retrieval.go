package matcher

import (
	"math"
	"sort"
	"strings"

	"lost-found/backend/internal/model"
)

// ── 向量计算 ──

// Vector 稀疏词权重向量
type Vector map[string]float64

// ComputeTF 词频：count / |doc|，空文档按长度 1 处理
func ComputeTF(tokens []string) Vector {
	tf := make(Vector, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	total := float64(len(tokens))
	if total == 0 {
		total = 1
	}
	for t := range tf {
		tf[t] /= total
	}
	return tf
}

// ComputeIDF 平滑逆文档频率：ln(N / (df+1)) + 1
// 文档数为 0 时返回空映射
func ComputeIDF(docs [][]string) Vector {
	n := len(docs)
	if n == 0 {
		return Vector{}
	}

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, t := range doc {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	idf := make(Vector, len(df))
	for t, c := range df {
		idf[t] = math.Log(float64(n)/float64(c+1)) + 1
	}
	return idf
}

// ComputeTFIDF TF × IDF，语料中未出现的词 IDF 取 1
func ComputeTFIDF(tf, idf Vector) Vector {
	out := make(Vector, len(tf))
	for t, v := range tf {
		w, ok := idf[t]
		if !ok {
			w = 1
		}
		out[t] = v * w
	}
	return out
}

// CosineSimilarity 余弦相似度，零范数按 1 处理（空向量与任何向量相似度为 0）
// 按词项字典序累加，同样的输入总得到逐位相同的结果，sim(A, A) 恰为 1
func CosineSimilarity(a, b Vector) float64 {
	var dot float64
	for _, t := range a.sortedTerms() {
		if w, ok := b[t]; ok {
			dot += a[t] * w
		}
	}

	na, nb := a.squaredNorm(), b.squaredNorm()
	if na == 0 {
		na = 1
	}
	if nb == 0 {
		nb = 1
	}
	// sqrt(x*x) == x 在 IEEE 754 下精确成立，自相似不会出现 1.0000000000000002
	return dot / math.Sqrt(na*nb)
}

func (v Vector) sortedTerms() []string {
	terms := make([]string, 0, len(v))
	for t := range v {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

func (v Vector) squaredNorm() float64 {
	var sum float64
	for _, t := range v.sortedTerms() {
		sum += v[t] * v[t]
	}
	return sum
}

// ── 检索 ──

// Candidate 检索结果：候选帖子及其 TF-IDF 余弦得分
type Candidate struct {
	Post  *model.Post
	Score float64
}

// Document 帖子的检索文本：标题、描述、类型、位置
func Document(p *model.Post) string {
	return strings.Join([]string{p.Title, p.Description, p.Category, p.Location}, " ")
}

// Retriever TF-IDF 检索器，无内部状态
type Retriever struct{}

// NewRetriever 创建检索器
func NewRetriever() *Retriever { return &Retriever{} }

// Retrieve 对候选池打分，按得分降序（同分保持输入顺序）返回前 topK 个
// 目标与候选共同构成语料计算 IDF
func (r *Retriever) Retrieve(target *model.Post, pool []*model.Post, topK int) []Candidate {
	if target == nil || len(pool) == 0 || topK <= 0 {
		return nil
	}

	docs := make([][]string, 0, len(pool)+1)
	docs = append(docs, Tokenize(Document(target)))
	for _, p := range pool {
		docs = append(docs, Tokenize(Document(p)))
	}
	idf := ComputeIDF(docs)

	targetVec := ComputeTFIDF(ComputeTF(docs[0]), idf)
	results := make([]Candidate, 0, len(pool))
	for i, p := range pool {
		vec := ComputeTFIDF(ComputeTF(docs[i+1]), idf)
		results = append(results, Candidate{Post: p, Score: CosineSimilarity(targetVec, vec)})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// PrefilterByCategory 按物品类型收窄候选池
// strict=false 时原样返回；strict=true 时仅保留与目标类型相同的候选
func PrefilterByCategory(target *model.Post, pool []*model.Post, strict bool) []*model.Post {
	if !strict || target == nil || target.Category == "" {
		return pool
	}
	out := make([]*model.Post, 0, len(pool))
	for _, p := range pool {
		if p.Category == target.Category {
			out = append(out, p)
		}
	}
	return out
}
